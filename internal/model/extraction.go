package model

import "time"

// ExtractionResult is the ephemeral output of one vision extraction call.
// It lives only for the duration of a single scan and is never persisted.
type ExtractionResult struct {
	Blocks  [][]string
	Elapsed time.Duration
	Found   bool
}

// Lines flattens the recognized blocks into a single ordered line list.
func (r *ExtractionResult) Lines() []string {
	var lines []string
	for _, block := range r.Blocks {
		lines = append(lines, block...)
	}
	return lines
}
