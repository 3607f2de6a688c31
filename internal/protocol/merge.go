package protocol

import "sort"

// Merge deduplicates candidates from both strategies by code, keeping the
// strictly higher-confidence version of each duplicate; ties keep the first
// seen. No field blending happens: the winner survives verbatim. This is
// the single deduplication point in the pipeline. Output is sorted by code.
func Merge(candidates []Candidate) []Candidate {
	byCode := make(map[string]Candidate, len(candidates))
	for _, cand := range candidates {
		existing, seen := byCode[cand.Code]
		if !seen || cand.Confidence > existing.Confidence {
			byCode[cand.Code] = cand
		}
	}

	merged := make([]Candidate, 0, len(byCode))
	for _, cand := range byCode {
		merged = append(merged, cand)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Code < merged[j].Code })
	return merged
}
