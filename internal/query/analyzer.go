// Package query turns a natural-language question into a structured analysis
// and an expanded search string for retrieval.
package query

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

// maxKeywords caps how many surviving tokens are kept, in original order.
const maxKeywords = 10

// stopWords are common function words excluded from keyword extraction.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {},
	"can": {}, "what": {}, "where": {}, "when": {}, "why": {}, "how": {},
}

// Analyzer classifies queries and derives search terms. Stateless apart from
// its logger; safe for concurrent use.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates a query analyzer. A nil logger disables logging.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// Analyze produces a fresh QueryAnalysis for one query. Entities are taken
// from the original query so capitalization survives preprocessing.
func (a *Analyzer) Analyze(query string) models.QueryAnalysis {
	processed := preprocess(query)
	questionType := classifyQuestion(query)

	analysis := models.QueryAnalysis{
		Intent:         extractIntent(query, questionType),
		Keywords:       extractKeywords(processed),
		Entities:       extractEntities(query),
		QuestionType:   questionType,
		ProcessedQuery: processed,
	}

	a.logger.Debug("analyzed query",
		zap.String("question_type", string(analysis.QuestionType)),
		zap.String("intent", string(analysis.Intent)),
		zap.Int("keywords", len(analysis.Keywords)),
		zap.Int("entities", len(analysis.Entities)))

	return analysis
}

// BuildSearchQuery joins keywords then entities into the effective search
// text embedded for retrieval. This is a query-expansion step, not a
// verbatim pass-through of the user's text.
func (a *Analyzer) BuildSearchQuery(analysis models.QueryAnalysis) string {
	terms := make([]string, 0, len(analysis.Keywords)+len(analysis.Entities))
	terms = append(terms, analysis.Keywords...)
	terms = append(terms, analysis.Entities...)
	return strings.Join(terms, " ")
}

// preprocess lowercases, trims, strips punctuation, and collapses whitespace.
func preprocess(query string) string {
	s := strings.ToLower(strings.TrimSpace(query))
	s = strings.Map(func(r rune) rune {
		switch r {
		case '?', '!', '.', ',', ';', ':':
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func extractKeywords(processed string) []string {
	var keywords []string
	for _, word := range strings.Fields(processed) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// extractEntities collects capitalized tokens as a proper-noun heuristic.
// Order is preserved and duplicates are allowed.
func extractEntities(query string) []string {
	var entities []string
	for _, word := range strings.Fields(query) {
		runes := []rune(word)
		if len(runes) > 1 && unicode.IsUpper(runes[0]) {
			entities = append(entities, word)
		}
	}
	return entities
}

// classifyQuestion applies ordered keyword rules; the first match wins.
func classifyQuestion(query string) models.QuestionType {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "how to") || strings.Contains(lower, "step") || strings.Contains(lower, "process"):
		return models.QuestionProcedural
	case strings.Contains(lower, "what is") || strings.Contains(lower, "define") || strings.Contains(lower, "explain"):
		return models.QuestionConceptual
	case strings.Contains(lower, "compare") || strings.Contains(lower, "difference") || strings.Contains(lower, "vs"):
		return models.QuestionComparative
	case strings.HasPrefix(lower, "what") || strings.HasPrefix(lower, "when") || strings.HasPrefix(lower, "where"):
		return models.QuestionFactual
	default:
		return models.QuestionGeneral
	}
}

func extractIntent(query string, questionType models.QuestionType) models.Intent {
	switch questionType {
	case models.QuestionProcedural:
		return models.IntentSeekingInstructions
	case models.QuestionConceptual:
		return models.IntentSeekingExplanation
	case models.QuestionComparative:
		return models.IntentSeekingComparison
	case models.QuestionFactual:
		return models.IntentSeekingFacts
	}
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "help") || strings.Contains(lower, "support"):
		return models.IntentSeekingHelp
	case strings.Contains(lower, "recommend") || strings.Contains(lower, "suggest"):
		return models.IntentSeekingRecommendation
	default:
		return models.IntentGeneralInquiry
	}
}
