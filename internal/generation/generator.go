// Package generation produces natural-language answers grounded in
// retrieved context.
package generation

import "context"

// Generator turns a query plus a context string into an answer.
type Generator interface {
	// Generate returns an answer for the query grounded in the context
	// string. Implementations return an error on backend failure; the
	// caller decides how to degrade.
	Generate(ctx context.Context, query, contextText string) (string, error)

	// Close releases any resources held by the generator.
	Close() error
}

// Apology is the user-facing substitute when generation fails.
const Apology = "I apologize, but I encountered an error while generating a response. Please try again."

// EmptyAnswer is returned when the backend produces no candidates.
const EmptyAnswer = "Sorry, I could not generate a response."
