package logpattern

import (
	"fmt"
	"math"
	"testing"

	"loupe-mcp/internal/models"
)

func timeoutBatch() []models.ScoredRecord {
	// Three records sharing "Connection timeout after {NUM}ms" and two
	// sharing a distinct pattern.
	return []models.ScoredRecord{
		{ID: "1", Score: 0.9, Message: "Connection timeout after 5000ms", Service: "api", Timestamp: "2023-05-01T10:00:00Z"},
		{ID: "2", Score: 0.8, Message: "Connection timeout after 31ms", Service: "api", Timestamp: "2023-05-01T10:00:01Z"},
		{ID: "3", Score: 0.95, Message: "Connection timeout after 120ms", Service: "worker", Timestamp: "2023-05-01T10:00:02Z"},
		{ID: "4", Score: 0.7, Message: "disk full on /var", Service: "worker", Timestamp: "2023-05-01T10:00:03Z"},
		{ID: "5", Score: 0.6, Message: "disk full on /tmp", Service: "unknown", Timestamp: "2023-05-01T10:00:04Z"},
	}
}

func TestMine(t *testing.T) {
	result := Mine(timeoutBatch())

	if result.OriginalCount != 5 {
		t.Errorf("OriginalCount = %d, want 5", result.OriginalCount)
	}
	if len(result.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(result.Groups))
	}

	first := result.Groups[0]
	if first.Pattern != "Connection timeout after {NUM}ms" {
		t.Errorf("first pattern = %q, want timeout pattern", first.Pattern)
	}
	if first.Count != 3 {
		t.Errorf("first group count = %d, want 3", first.Count)
	}
	if math.Abs(first.AverageScore-(0.9+0.8+0.95)/3) > 1e-9 {
		t.Errorf("first group average = %v, want ≈0.883", first.AverageScore)
	}
	if len(first.Samples) != 3 {
		t.Errorf("first group has %d samples, want 3", len(first.Samples))
	}
	// Samples keep input order, not score order.
	if first.Samples[0].ID != "1" || first.Samples[1].ID != "2" || first.Samples[2].ID != "3" {
		t.Errorf("samples out of input order: %v", first.Samples)
	}

	second := result.Groups[1]
	if second.Count != 2 {
		t.Errorf("second group count = %d, want 2", second.Count)
	}
	// "unknown" is excluded from the service set.
	if len(second.Services) != 1 || second.Services[0] != "worker" {
		t.Errorf("second group services = %v, want [worker]", second.Services)
	}
}

func TestMine_EmptyBatch(t *testing.T) {
	result := Mine(nil)
	if len(result.Groups) != 0 {
		t.Errorf("got %d groups, want 0", len(result.Groups))
	}
	if result.OriginalCount != 0 {
		t.Errorf("OriginalCount = %d, want 0", result.OriginalCount)
	}
}

func TestMine_AllDistinct(t *testing.T) {
	records := []models.ScoredRecord{
		{ID: "1", Score: 0.5, Message: "alpha failed"},
		{ID: "2", Score: 0.6, Message: "beta failed"},
		{ID: "3", Score: 0.7, Message: "gamma failed"},
	}

	result := Mine(records)
	if len(result.Groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(result.Groups))
	}
	for _, g := range result.Groups {
		if g.Count != 1 {
			t.Errorf("group %q count = %d, want 1", g.Pattern, g.Count)
		}
	}
}

func TestMine_CountsSumToBatchSize(t *testing.T) {
	batches := [][]models.ScoredRecord{
		nil,
		timeoutBatch(),
		{
			{ID: "1", Message: "same thing"},
			{ID: "2", Message: "same thing"},
			{ID: "3", Message: "same thing"},
		},
	}

	for i, batch := range batches {
		result := Mine(batch)
		total := 0
		for _, g := range result.Groups {
			total += g.Count
		}
		if total != len(batch) {
			t.Errorf("batch %d: counts sum to %d, want %d", i, total, len(batch))
		}
	}
}

func TestMine_SampleCapAndTieBreak(t *testing.T) {
	var records []models.ScoredRecord
	for i := 0; i < 6; i++ {
		records = append(records, models.ScoredRecord{
			ID:      fmt.Sprintf("a%d", i),
			Score:   0.2,
			Message: fmt.Sprintf("cache miss for key %d", i),
		})
	}
	// Equal count, higher average score: must sort first.
	for i := 0; i < 6; i++ {
		records = append(records, models.ScoredRecord{
			ID:      fmt.Sprintf("b%d", i),
			Score:   0.9,
			Message: fmt.Sprintf("queue depth %d exceeded", i),
		})
	}

	result := Mine(records)
	if len(result.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(result.Groups))
	}
	if result.Groups[0].Pattern != "queue depth {NUM} exceeded" {
		t.Errorf("tie on count should rank by average score, got %q first", result.Groups[0].Pattern)
	}
	for _, g := range result.Groups {
		if len(g.Samples) != 3 {
			t.Errorf("group %q has %d samples, want cap of 3", g.Pattern, len(g.Samples))
		}
	}
}
