package logpattern

import (
	"sort"

	"loupe-mcp/internal/models"
)

// SampleRef is a lightweight reference to a record, kept instead of the full
// record to bound the footprint of pattern statistics.
type SampleRef struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp,omitempty"`
}

// PatternStat summarizes one pattern seen during deduplication.
type PatternStat struct {
	Count   int         `json:"count"`
	Samples []SampleRef `json:"samples"`
}

// Representative is the single highest-scoring record retained for a
// pattern, annotated with the number of records it stands for.
type Representative struct {
	models.ScoredRecord
	PatternCount int `json:"pattern_count"`
}

// DedupeResult holds one representative per distinct pattern plus per
// pattern statistics.
type DedupeResult struct {
	Representatives []Representative       `json:"representatives"`
	PatternStats    map[string]PatternStat `json:"pattern_stats"`
}

// Deduplicate collapses a batch to one representative per pattern. The
// representative is the max-score member; on ties the first occurrence of
// the maximum wins. Representatives are returned sorted by score descending.
func Deduplicate(records []models.ScoredRecord) DedupeResult {
	type patternAcc struct {
		count   int
		samples []SampleRef
		best    models.ScoredRecord
	}

	byPattern := make(map[string]*patternAcc)
	var order []string

	for _, rec := range records {
		pattern := Normalize(rec.Message)
		acc, ok := byPattern[pattern]
		if !ok {
			acc = &patternAcc{best: rec}
			byPattern[pattern] = acc
			order = append(order, pattern)
		} else if rec.Score > acc.best.Score {
			acc.best = rec
		}

		acc.count++
		if len(acc.samples) < maxSamples {
			acc.samples = append(acc.samples, SampleRef{ID: rec.ID, Timestamp: rec.Timestamp})
		}
	}

	stats := make(map[string]PatternStat, len(byPattern))
	reps := make([]Representative, 0, len(order))
	for _, pattern := range order {
		acc := byPattern[pattern]
		stats[pattern] = PatternStat{Count: acc.count, Samples: acc.samples}
		reps = append(reps, Representative{ScoredRecord: acc.best, PatternCount: acc.count})
	}

	sort.SliceStable(reps, func(i, j int) bool {
		return reps[i].Score > reps[j].Score
	})

	return DedupeResult{Representatives: reps, PatternStats: stats}
}
