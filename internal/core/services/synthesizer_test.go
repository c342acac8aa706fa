package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veridoc/internal/core/domain"
)

func retrievedSegments(texts ...string) []domain.RetrievedSegment {
	out := make([]domain.RetrievedSegment, len(texts))
	for i, text := range texts {
		out[i] = domain.RetrievedSegment{
			Segment: domain.Segment{
				ID:    "seg-" + string(rune('a'+i)),
				Index: i,
				Text:  text,
				Pages: []int{i + 1},
			},
			Score: 1.0 - float64(i)*0.1,
		}
	}
	return out
}

func TestSynthesize_GroundedAnswerWithCitations(t *testing.T) {
	llm := &mockLLM{response: "The total supply is 1,000,000 tokens."}
	svc := NewSynthesizerService(llm, 0)

	answer, err := svc.Synthesize(context.Background(), "What is the total supply?",
		retrievedSegments("supply details", "release schedule"))
	require.NoError(t, err)

	assert.True(t, answer.Grounded)
	assert.Equal(t, "The total supply is 1,000,000 tokens.", answer.Text)
	require.Len(t, answer.Citations, 2)
	assert.Equal(t, "seg-a", answer.Citations[0].SegmentID)
	assert.Equal(t, 0, answer.Citations[0].SegmentIndex)
	assert.Equal(t, []int{1}, answer.Citations[0].Pages)
	assert.Equal(t, "seg-b", answer.Citations[1].SegmentID)
}

func TestSynthesize_EmptyRetrievalSkipsModel(t *testing.T) {
	llm := &mockLLM{response: "should never be used"}
	svc := NewSynthesizerService(llm, 0)

	answer, err := svc.Synthesize(context.Background(), "question", nil)
	require.NoError(t, err)

	assert.False(t, answer.Grounded)
	assert.Equal(t, domain.InsufficientGroundingText, answer.Text)
	assert.Empty(t, answer.Citations)
	assert.Zero(t, llm.calls)
}

func TestSynthesize_BudgetDropsWholeSegments(t *testing.T) {
	llm := &mockLLM{response: "answer"}
	// Budget fits the first two segments only.
	svc := NewSynthesizerService(llm, 20)

	segs := retrievedSegments(
		strings.Repeat("a", 8),
		strings.Repeat("b", 8),
		strings.Repeat("c", 8),
	)

	answer, err := svc.Synthesize(context.Background(), "question", segs)
	require.NoError(t, err)

	// The dropped segment is not cited.
	require.Len(t, answer.Citations, 2)
	assert.Equal(t, "seg-a", answer.Citations[0].SegmentID)
	assert.Equal(t, "seg-b", answer.Citations[1].SegmentID)

	// And its text never reached the prompt.
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], strings.Repeat("a", 8))
	assert.NotContains(t, llm.prompts[0], strings.Repeat("c", 8))
}

func TestSynthesize_NothingFitsBudget(t *testing.T) {
	llm := &mockLLM{response: "answer"}
	svc := NewSynthesizerService(llm, 5)

	answer, err := svc.Synthesize(context.Background(), "question",
		retrievedSegments(strings.Repeat("x", 100)))
	require.NoError(t, err)

	assert.False(t, answer.Grounded)
	assert.Equal(t, domain.InsufficientGroundingText, answer.Text)
	assert.Zero(t, llm.calls)
}

func TestSynthesize_PromptContainsQuestionAndExcerpts(t *testing.T) {
	llm := &mockLLM{response: "answer"}
	svc := NewSynthesizerService(llm, 0)

	_, err := svc.Synthesize(context.Background(), "What changed in Q3?",
		retrievedSegments("first excerpt", "second excerpt"))
	require.NoError(t, err)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "What changed in Q3?")
	assert.Contains(t, prompt, "[1] first excerpt")
	assert.Contains(t, prompt, "[2] second excerpt")
	assert.Contains(t, prompt, domain.InsufficientGroundingText)
}

func TestSynthesize_ModelFailureWrapsSynthesis(t *testing.T) {
	llm := &mockLLM{err: errors.New("model crashed")}
	svc := NewSynthesizerService(llm, 0)

	_, err := svc.Synthesize(context.Background(), "question", retrievedSegments("text"))
	assert.ErrorIs(t, err, domain.ErrSynthesis)
}

func TestSynthesize_EmptyModelOutputIsError(t *testing.T) {
	llm := &mockLLM{response: "   "}
	svc := NewSynthesizerService(llm, 0)

	_, err := svc.Synthesize(context.Background(), "question", retrievedSegments("text"))
	assert.ErrorIs(t, err, domain.ErrSynthesis)
}

func TestSynthesize_ModelDeclinesWithoutCitations(t *testing.T) {
	llm := &mockLLM{response: domain.InsufficientGroundingText}
	svc := NewSynthesizerService(llm, 0)

	answer, err := svc.Synthesize(context.Background(), "question", retrievedSegments("text"))
	require.NoError(t, err)

	assert.Equal(t, domain.InsufficientGroundingText, answer.Text)
	assert.Empty(t, answer.Citations)
}
