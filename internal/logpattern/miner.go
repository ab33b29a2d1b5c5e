package logpattern

import (
	"sort"

	"loupe-mcp/internal/models"
)

// maxSamples caps the number of example records retained per pattern.
const maxSamples = 3

// PatternGroup aggregates all records in a batch that share one pattern.
type PatternGroup struct {
	Pattern      string                `json:"pattern"`
	Count        int                   `json:"count"`
	TotalScore   float64               `json:"total_score"`
	AverageScore float64               `json:"average_score"`
	Samples      []models.ScoredRecord `json:"samples"`
	Services     []string              `json:"services"`
}

// MiningResult is the ranked pattern report for one batch.
type MiningResult struct {
	Groups        []PatternGroup `json:"groups"`
	OriginalCount int            `json:"original_count"`
}

// Mine groups a batch of records by normalized pattern. Groups are ordered
// by count descending, then average score descending; callers rely on the
// most frequent pattern appearing first. Samples keep the first three
// records seen for a pattern, in input order.
func Mine(records []models.ScoredRecord) MiningResult {
	type groupAcc struct {
		group    PatternGroup
		services map[string]bool
	}

	byPattern := make(map[string]*groupAcc)
	var order []string

	for _, rec := range records {
		pattern := Normalize(rec.Message)
		acc, ok := byPattern[pattern]
		if !ok {
			acc = &groupAcc{
				group:    PatternGroup{Pattern: pattern},
				services: make(map[string]bool),
			}
			byPattern[pattern] = acc
			order = append(order, pattern)
		}

		acc.group.Count++
		acc.group.TotalScore += rec.Score
		if len(acc.group.Samples) < maxSamples {
			acc.group.Samples = append(acc.group.Samples, rec)
		}
		if rec.Service != "" && rec.Service != "unknown" {
			acc.services[rec.Service] = true
		}
	}

	groups := make([]PatternGroup, 0, len(order))
	for _, pattern := range order {
		acc := byPattern[pattern]
		acc.group.AverageScore = acc.group.TotalScore / float64(acc.group.Count)
		acc.group.Services = sortedKeys(acc.services)
		groups = append(groups, acc.group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].AverageScore > groups[j].AverageScore
	})

	return MiningResult{Groups: groups, OriginalCount: len(records)}
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
