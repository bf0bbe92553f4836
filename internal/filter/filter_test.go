package filter

import (
	"math"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

const refundQuery = "what is the refund policy"

// refundAnswer is relevant to refundQuery, long enough, and consistent with
// a context that repeats its wording.
const refundAnswer = "Our refund policy allows returns within thirty days of purchase for a full refund."

func TestFilter_CleanResponse(t *testing.T) {
	f := NewFilter(nil)
	result := f.Filter(refundAnswer, refundQuery, []string{refundAnswer})

	if !result.IsAppropriate {
		t.Error("clean response marked inappropriate")
	}
	if len(result.Flags) != 0 {
		t.Errorf("unexpected flags %v", result.Flags)
	}
	if result.Confidence != 1.0 {
		t.Errorf("confidence = %f, want 1.0", result.Confidence)
	}
	if result.Content != refundAnswer {
		t.Error("clean content must pass through unchanged")
	}
}

func TestFilter_InappropriateContent(t *testing.T) {
	f := NewFilter(nil)
	result := f.Filter("secret plan", "what is the plan", nil)

	if result.IsAppropriate {
		t.Error("response containing a banned term marked appropriate")
	}
	if !hasFlag(result.Flags, FlagInappropriate) {
		t.Errorf("flags = %v, missing %s", result.Flags, FlagInappropriate)
	}
	if result.Content != safeResponse {
		t.Error("content must be replaced by the fixed safe message")
	}
	if strings.Contains(result.Content, "secret") {
		t.Error("safe message must not echo the offending text")
	}
}

func TestFilter_CaseInsensitivePatterns(t *testing.T) {
	f := NewFilter(nil)
	if f.Filter("This mentions a PASSWORD somewhere in the text body.", "q", nil).IsAppropriate {
		t.Error("pattern matching must be case-insensitive")
	}
}

func TestFilter_LowRelevance(t *testing.T) {
	f := NewFilter(nil)
	answer := "Bananas ripen faster when stored together in a warm kitchen overnight."
	result := f.Filter(answer, refundQuery, []string{answer})

	if !hasFlag(result.Flags, FlagLowRelevance) {
		t.Errorf("flags = %v, missing %s", result.Flags, FlagLowRelevance)
	}
	if math.Abs(result.Confidence-0.7) > 1e-9 {
		t.Errorf("confidence = %f, want 0.7", result.Confidence)
	}
}

func TestFilter_Inconsistency(t *testing.T) {
	f := NewFilter(nil)
	result := f.Filter(refundAnswer, refundQuery, []string{"completely unrelated context about parking garages"})

	if !hasFlag(result.Flags, FlagInconsistency) {
		t.Errorf("flags = %v, missing %s", result.Flags, FlagInconsistency)
	}
	if math.Abs(result.Confidence-0.8) > 1e-9 {
		t.Errorf("confidence = %f, want 0.8", result.Confidence)
	}
}

func TestFilter_EmptyContextIsConsistent(t *testing.T) {
	f := NewFilter(nil)
	result := f.Filter(refundAnswer, refundQuery, nil)
	if hasFlag(result.Flags, FlagInconsistency) {
		t.Error("no context means nothing to contradict")
	}
}

func TestFilter_LengthFlags(t *testing.T) {
	f := NewFilter(nil)

	short := "Refund policy applies."
	result := f.Filter(short, refundQuery, []string{short})
	if !hasFlag(result.Flags, FlagTooShort) {
		t.Errorf("flags = %v, missing %s", result.Flags, FlagTooShort)
	}
	if math.Abs(result.Confidence-0.9) > 1e-9 {
		t.Errorf("confidence = %f, want 0.9", result.Confidence)
	}

	long := strings.Repeat(refundAnswer+" ", 30)
	result = f.Filter(long, refundQuery, []string{long})
	if !hasFlag(result.Flags, FlagTooLong) {
		t.Errorf("flags = %v, missing %s", result.Flags, FlagTooLong)
	}
	if math.Abs(result.Confidence-0.95) > 1e-9 {
		t.Errorf("confidence = %f, want 0.95", result.Confidence)
	}
}

func TestFilter_PenaltiesCompose(t *testing.T) {
	f := NewFilter(nil)
	// Irrelevant, inconsistent, and too short all at once.
	result := f.Filter("Bananas ripen overnight somewhere.", refundQuery,
		[]string{"completely unrelated context about parking garages"})

	want := 0.7 * 0.8 * 0.9
	if math.Abs(result.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %f, want %f", result.Confidence, want)
	}
}

func TestFilter_ConfidenceMonotonicity(t *testing.T) {
	f := NewFilter(nil)
	clean := f.Filter(refundAnswer, refundQuery, []string{refundAnswer})
	flagged := f.Filter("Refund policy applies.", refundQuery, []string{"Refund policy applies."})

	if flagged.Confidence >= clean.Confidence {
		t.Errorf("flagged confidence %f not below clean %f", flagged.Confidence, clean.Confidence)
	}
}

func TestEnhanceWithMetadata(t *testing.T) {
	f := NewFilter(nil)

	base := models.FilteredResponse{Content: refundAnswer, Confidence: 1.0, IsAppropriate: true}
	good := []models.SearchMatch{{Score: 0.9}, {Score: 0.85}}
	if got := f.EnhanceWithMetadata(base, good); got != refundAnswer {
		t.Errorf("confident answer with strong sources must be unchanged, got %q", got)
	}

	low := base
	low.Confidence = 0.7
	got := f.EnhanceWithMetadata(low, good)
	if !strings.HasPrefix(got, "*Please note: This response has medium confidence (70%)*\n\n") {
		t.Errorf("missing confidence disclosure: %q", got)
	}

	weak := []models.SearchMatch{{Score: 0.4}, {Score: 0.5}}
	got = f.EnhanceWithMetadata(base, weak)
	if !strings.HasSuffix(got, "Consider rephrasing your question for better results.*") {
		t.Errorf("missing rephrase note: %q", got)
	}

	if got := f.EnhanceWithMetadata(base, nil); got != refundAnswer {
		t.Error("no sources must not append a source note")
	}
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
