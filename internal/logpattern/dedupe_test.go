package logpattern

import (
	"testing"

	"loupe-mcp/internal/models"
)

func TestDeduplicate(t *testing.T) {
	result := Deduplicate(timeoutBatch())

	if len(result.Representatives) != 2 {
		t.Fatalf("got %d representatives, want 2", len(result.Representatives))
	}

	// The timeout pattern's representative is its max-score member, and it
	// sorts first because 0.95 > 0.7.
	top := result.Representatives[0]
	if top.ID != "3" || top.Score != 0.95 {
		t.Errorf("top representative = %s (score %v), want id 3 score 0.95", top.ID, top.Score)
	}
	if top.PatternCount != 3 {
		t.Errorf("top representative pattern count = %d, want 3", top.PatternCount)
	}

	stats, ok := result.PatternStats["Connection timeout after {NUM}ms"]
	if !ok {
		t.Fatalf("missing pattern stats for timeout pattern; have %v", result.PatternStats)
	}
	if stats.Count != 3 {
		t.Errorf("pattern stats count = %d, want 3", stats.Count)
	}
	if len(stats.Samples) != 3 {
		t.Errorf("pattern stats has %d sample refs, want 3", len(stats.Samples))
	}
	if stats.Samples[0].ID != "1" {
		t.Errorf("first sample ref = %s, want first-seen record 1", stats.Samples[0].ID)
	}
}

func TestDeduplicate_RepresentativeCountMatchesDistinctPatterns(t *testing.T) {
	tests := []struct {
		name    string
		records []models.ScoredRecord
		want    int
	}{
		{name: "empty", records: nil, want: 0},
		{
			name: "single pattern",
			records: []models.ScoredRecord{
				{ID: "1", Message: "user 1 logged in"},
				{ID: "2", Message: "user 2 logged in"},
			},
			want: 1,
		},
		{
			name: "all distinct",
			records: []models.ScoredRecord{
				{ID: "1", Message: "alpha"},
				{ID: "2", Message: "beta"},
				{ID: "3", Message: "gamma"},
			},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Deduplicate(tt.records)
			if len(result.Representatives) != tt.want {
				t.Errorf("got %d representatives, want %d", len(result.Representatives), tt.want)
			}
			if len(result.PatternStats) != tt.want {
				t.Errorf("got %d pattern stats, want %d", len(result.PatternStats), tt.want)
			}
		})
	}
}

func TestDeduplicate_FirstOccurrenceWinsTies(t *testing.T) {
	records := []models.ScoredRecord{
		{ID: "first", Score: 0.8, Message: "worker 1 crashed"},
		{ID: "second", Score: 0.8, Message: "worker 2 crashed"},
		{ID: "third", Score: 0.5, Message: "worker 3 crashed"},
	}

	result := Deduplicate(records)
	if len(result.Representatives) != 1 {
		t.Fatalf("got %d representatives, want 1", len(result.Representatives))
	}
	if result.Representatives[0].ID != "first" {
		t.Errorf("tie should keep first occurrence of the max, got %s", result.Representatives[0].ID)
	}
	if result.Representatives[0].PatternCount != 3 {
		t.Errorf("pattern count = %d, want 3", result.Representatives[0].PatternCount)
	}
}

func TestDeduplicate_SingletonPattern(t *testing.T) {
	result := Deduplicate([]models.ScoredRecord{{ID: "only", Score: 0.3, Message: "one off event"}})
	if len(result.Representatives) != 1 {
		t.Fatalf("got %d representatives, want 1", len(result.Representatives))
	}
	if result.Representatives[0].PatternCount != 1 {
		t.Errorf("singleton pattern count = %d, want 1", result.Representatives[0].PatternCount)
	}
}
