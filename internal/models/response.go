package models

// FilteredResponse is a generated answer after post-processing: screened for
// appropriateness, scored against the query and retrieved context, and
// annotated with a confidence value in [0,1].
type FilteredResponse struct {
	Content       string   `json:"content"`
	Confidence    float64  `json:"confidence"`
	Flags         []string `json:"flags"`
	IsAppropriate bool     `json:"is_appropriate"`
}
