package model

// Problem is a single catalog entry extracted from its detail page.
type Problem struct {
	Category     string `json:"category"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	SampleInput  string `json:"sample_input,omitempty"`
	SampleOutput string `json:"sample_output,omitempty"`
}

// Valid reports whether the problem carries the minimum metadata worth
// persisting. Partial records are never written to disk.
func (p Problem) Valid() bool {
	return p.Title != "" && p.Description != ""
}

// TestCase is one structured fixture reconstructed from the raw fragment
// sequence of a problem's test panel. Inputs and Expected hold arbitrary
// JSON-compatible values; either may be absent when its fragment failed to
// parse.
type TestCase struct {
	Inputs   any    `json:"inputs,omitempty"`
	Expected any    `json:"expected,omitempty"`
	Name     string `json:"name"`
}
