package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
	"github.com/custodia-labs/veridoc/internal/logger"
)

// DefaultContextBudgetChars caps the total segment text included in the
// grounding context passed to the generative model.
const DefaultContextBudgetChars = 8000

// answerPromptTemplate instructs the model to answer strictly from the
// provided excerpts.
const answerPromptTemplate = `You are answering a question about a document. Use ONLY the numbered excerpts below. If the excerpts do not contain the answer, reply exactly: %q

Excerpts:
%s
Question: %s

Answer:`

// SynthesizerService turns retrieved segments into a grounded answer
// with citations.
type SynthesizerService struct {
	llm                driven.LLMService
	contextBudgetChars int
}

// NewSynthesizerService creates a new synthesizer service. A budget of
// zero or less selects the default.
func NewSynthesizerService(llm driven.LLMService, contextBudgetChars int) *SynthesizerService {
	if contextBudgetChars <= 0 {
		contextBudgetChars = DefaultContextBudgetChars
	}
	return &SynthesizerService{
		llm:                llm,
		contextBudgetChars: contextBudgetChars,
	}
}

// Synthesize generates an answer from the retrieved segments. With no
// segments it returns the fixed insufficient-grounding answer without
// calling the model. Segments that do not fit the context budget are
// dropped whole, lowest-ranked first, and dropped segments are never
// cited.
func (s *SynthesizerService) Synthesize(ctx context.Context, question string, retrieved []domain.RetrievedSegment) (*domain.Answer, error) {
	included := s.fitBudget(retrieved)
	if len(included) == 0 {
		logger.Debug("No usable grounding context, returning fixed answer")
		return &domain.Answer{
			Text:     domain.InsufficientGroundingText,
			Grounded: false,
		}, nil
	}

	prompt := buildPrompt(question, included)
	logger.Debug("Synthesis prompt: %d chars, %d segments", len(prompt), len(included))

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: model returned empty answer", domain.ErrSynthesis)
	}

	// The model declining to answer is still a grounded response, but
	// citing excerpts for it would be misleading.
	if strings.Contains(text, domain.InsufficientGroundingText) {
		return &domain.Answer{Text: domain.InsufficientGroundingText, Grounded: true}, nil
	}

	citations := make([]domain.Citation, len(included))
	for i, rs := range included {
		citations[i] = domain.Citation{
			SegmentID:    rs.Segment.ID,
			SegmentIndex: rs.Segment.Index,
			Pages:        rs.Segment.Pages,
		}
	}

	return &domain.Answer{
		Text:      text,
		Citations: citations,
		Grounded:  true,
	}, nil
}

// fitBudget keeps the highest-ranked prefix of segments whose combined
// text fits the context budget.
func (s *SynthesizerService) fitBudget(retrieved []domain.RetrievedSegment) []domain.RetrievedSegment {
	var included []domain.RetrievedSegment
	total := 0
	for _, rs := range retrieved {
		if total+len(rs.Segment.Text) > s.contextBudgetChars {
			logger.Debug("Context budget reached, dropping %d lower-ranked segments",
				len(retrieved)-len(included))
			break
		}
		total += len(rs.Segment.Text)
		included = append(included, rs)
	}
	return included
}

// buildPrompt renders the grounding prompt with numbered excerpts.
func buildPrompt(question string, included []domain.RetrievedSegment) string {
	var excerpts strings.Builder
	for i, rs := range included {
		fmt.Fprintf(&excerpts, "[%d] %s\n\n", i+1, rs.Segment.Text)
	}
	return fmt.Sprintf(answerPromptTemplate, domain.InsufficientGroundingText, excerpts.String(), question)
}
