// Package filter post-processes generated answers against the query and the
// retrieved context: appropriateness screening, relevance and consistency
// scoring, and confidence annotation.
package filter

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// Flag values attached to a filtered response.
const (
	FlagInappropriate = "inappropriate_content"
	FlagLowRelevance  = "low_relevance"
	FlagInconsistency = "potential_inconsistency"
	FlagTooShort      = "too_short"
	FlagTooLong       = "too_long"
)

// Scoring thresholds and confidence multipliers. The multipliers compose
// multiplicatively, so every triggered flag strictly lowers confidence.
const (
	relevanceThreshold   = 0.3
	consistencyThreshold = 0.5
	minResponseChars     = 50
	maxResponseChars     = 2000

	relevancePenalty   = 0.7
	consistencyPenalty = 0.8
	shortPenalty       = 0.9
	longPenalty        = 0.95

	lowConfidenceThreshold = 0.8
	lowSourceScore         = 0.7
)

// safeResponse replaces content that trips an appropriateness pattern. It
// never echoes the offending text.
const safeResponse = "I apologize, but I cannot provide a response to that query as it may contain inappropriate content or requests. Please rephrase your question in a more appropriate way, and I'll be happy to help you find the information you need from our knowledge base."

// inappropriatePatterns is a heuristic screen, not a security boundary.
var inappropriatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(hate|violence|discrimination)\b`),
	regexp.MustCompile(`(?i)\b(illegal|harmful|dangerous)\b`),
	regexp.MustCompile(`(?i)\b(password|secret|confidential)\b`),
}

// Filter screens and scores generated responses. Stateless apart from its
// logger; safe for concurrent use.
type Filter struct {
	logger *zap.Logger
}

// NewFilter creates a response filter. A nil logger disables logging.
func NewFilter(logger *zap.Logger) *Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filter{logger: logger}
}

// Filter evaluates a generated response against the originating query and
// the context chunks it was grounded in. Content-policy violations are a
// data-level outcome, never an error.
func (f *Filter) Filter(response, query string, context []string) models.FilteredResponse {
	var flags []string
	confidence := 1.0

	appropriate := checkAppropriate(response)
	if !appropriate {
		flags = append(flags, FlagInappropriate)
	}

	if relevance(response, query) < relevanceThreshold {
		flags = append(flags, FlagLowRelevance)
		confidence *= relevancePenalty
	}

	if consistency(response, context) < consistencyThreshold {
		flags = append(flags, FlagInconsistency)
		confidence *= consistencyPenalty
	}

	switch {
	case len(response) < minResponseChars:
		flags = append(flags, FlagTooShort)
		confidence *= shortPenalty
	case len(response) > maxResponseChars:
		flags = append(flags, FlagTooLong)
		confidence *= longPenalty
	}

	content := response
	if !appropriate {
		content = safeResponse
	}

	if len(flags) > 0 {
		f.logger.Debug("response flagged",
			zap.Strings("flags", flags),
			zap.Float64("confidence", confidence))
	}

	return models.FilteredResponse{
		Content:       content,
		Confidence:    confidence,
		Flags:         flags,
		IsAppropriate: appropriate,
	}
}

// EnhanceWithMetadata annotates the filtered content with a confidence
// disclosure when confidence is low and a rephrase suggestion when the
// source matches score poorly. Annotations are additive; the content used
// for scoring is not mutated.
func (f *Filter) EnhanceWithMetadata(filtered models.FilteredResponse, sources []models.SearchMatch) string {
	enhanced := filtered.Content

	if filtered.Confidence < lowConfidenceThreshold {
		pct := int(math.Round(filtered.Confidence * 100))
		enhanced = fmt.Sprintf("*Please note: This response has medium confidence (%d%%)*\n\n%s", pct, enhanced)
	}

	if len(sources) > 0 {
		scores := make([]float64, len(sources))
		for i, s := range sources {
			scores[i] = s.Score
		}
		if utils.MeanScore(scores) < lowSourceScore {
			enhanced += "\n\n*Note: The source documents have moderate similarity to your query. Consider rephrasing your question for better results.*"
		}
	}

	return enhanced
}

func checkAppropriate(response string) bool {
	for _, pattern := range inappropriatePatterns {
		if pattern.MatchString(response) {
			return false
		}
	}
	return true
}

// relevance is the fraction of query tokens longer than 3 characters that
// literally appear in the response.
func relevance(response, query string) float64 {
	queryWords := strings.Fields(strings.ToLower(query))
	if len(queryWords) == 0 {
		return 0
	}
	responseWords := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(response)) {
		responseWords[w] = struct{}{}
	}
	matches := 0
	for _, w := range queryWords {
		if len(w) > 3 {
			if _, ok := responseWords[w]; ok {
				matches++
			}
		}
	}
	return float64(matches) / float64(len(queryWords))
}

// consistency is the token-set overlap between the response and the context
// chunks, normalized by the response token-set size and capped at 1. With no
// context there is nothing to contradict, so it is defined as 1.
func consistency(response string, context []string) float64 {
	if len(context) == 0 {
		return 1.0
	}
	responseWords := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(response)) {
		responseWords[w] = struct{}{}
	}
	if len(responseWords) == 0 {
		return 0
	}
	totalOverlap := 0
	for _, chunk := range context {
		chunkWords := make(map[string]struct{})
		for _, w := range strings.Fields(strings.ToLower(chunk)) {
			chunkWords[w] = struct{}{}
		}
		for w := range responseWords {
			if _, ok := chunkWords[w]; ok {
				totalOverlap++
			}
		}
	}
	return math.Min(float64(totalOverlap)/float64(len(responseWords)), 1.0)
}
