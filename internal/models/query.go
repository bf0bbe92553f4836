package models

// QuestionType classifies what kind of answer a query is after.
type QuestionType string

const (
	QuestionFactual     QuestionType = "factual"
	QuestionProcedural  QuestionType = "procedural"
	QuestionConceptual  QuestionType = "conceptual"
	QuestionComparative QuestionType = "comparative"
	QuestionGeneral     QuestionType = "general"
)

// Intent names what the user is trying to get from the knowledge base.
type Intent string

const (
	IntentSeekingInstructions   Intent = "seeking_instructions"
	IntentSeekingExplanation    Intent = "seeking_explanation"
	IntentSeekingComparison     Intent = "seeking_comparison"
	IntentSeekingFacts          Intent = "seeking_facts"
	IntentSeekingHelp           Intent = "seeking_help"
	IntentSeekingRecommendation Intent = "seeking_recommendation"
	IntentGeneralInquiry        Intent = "general_inquiry"
)

// QueryAnalysis is the result of analyzing one natural-language query.
// Created fresh per query; never persisted.
type QueryAnalysis struct {
	Intent         Intent       `json:"intent"`
	Keywords       []string     `json:"keywords"`
	Entities       []string     `json:"entities"`
	QuestionType   QuestionType `json:"question_type"`
	ProcessedQuery string       `json:"processed_query"`
}

// SearchRequest is the input for a similarity search.
type SearchRequest struct {
	Query    string `json:"query"`
	TopK     int    `json:"top_k,omitempty"`
	Category string `json:"category,omitempty"`
}

// ChatRequest asks for a generated answer grounded in retrieved context.
type ChatRequest struct {
	Query    string `json:"query"`
	TopK     int    `json:"top_k,omitempty"`
	Category string `json:"category,omitempty"`
}

// ChatResponse carries the filtered, enhanced answer plus its sources.
type ChatResponse struct {
	Answer        string        `json:"answer"`
	Confidence    float64       `json:"confidence"`
	Flags         []string      `json:"flags,omitempty"`
	IsAppropriate bool          `json:"is_appropriate"`
	Sources       []SearchMatch `json:"sources"`
}
