package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/askpeer/askpeer-be/internal/llm"
	"github.com/askpeer/askpeer-be/internal/models"
)

const summarySystemInstruction = "You summarize forum answers. Write at most four sentences covering the " +
	"points the answers actually make. No meta-commentary, no filler openers " +
	"like 'Here is a summary', no mention of being an AI."

// SentinelSummary is returned for questions with no answers, without any
// gateway call.
const SentinelSummary = "No answers have been posted for this question yet."

// Low temperature biases the summary toward determinism.
const summaryTemperature = 0.2

// AnswerSummary is the result of summarizing a question's answers.
type AnswerSummary struct {
	Summary     string `json:"summary"`
	AnswerCount int    `json:"answerCount"`
}

// SummaryServiceProvider defines the interface for answer summarization.
type SummaryServiceProvider interface {
	SummarizeAnswers(ctx context.Context, questionID int64) (AnswerSummary, error)
}

// SummaryService produces a stateless natural-language summary of all answers
// to one question. Nothing is cached or persisted; every request recomputes.
type SummaryService struct {
	questions QuestionServiceProvider
	answers   AnswerServiceProvider
	gateway   llm.Provider
	maxTokens int
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(questions QuestionServiceProvider, answers AnswerServiceProvider, gateway llm.Provider, maxTokens int) *SummaryService {
	return &SummaryService{questions: questions, answers: answers, gateway: gateway, maxTokens: maxTokens}
}

// SummarizeAnswers summarizes the full answer set of a question. An empty
// answer set short-circuits to the sentinel summary. Gateway errors surface
// as ErrUpstream and never block reading the thread itself.
func (s *SummaryService) SummarizeAnswers(ctx context.Context, questionID int64) (AnswerSummary, error) {
	question, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return AnswerSummary{}, err
	}

	answers, err := s.answers.GetAnswersForQuestion(ctx, questionID)
	if err != nil {
		return AnswerSummary{}, err
	}

	if len(answers) == 0 {
		return AnswerSummary{Summary: SentinelSummary, AnswerCount: 0}, nil
	}

	prompt := buildSummaryPrompt(question, answers)

	text, err := s.gateway.Complete(ctx, prompt, llm.Options{
		Temperature: summaryTemperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return AnswerSummary{}, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	return AnswerSummary{Summary: text, AnswerCount: len(answers)}, nil
}

// buildSummaryPrompt assembles the one-shot prompt: question context followed
// by the answers, each labeled by ordinal position.
func buildSummaryPrompt(question models.Question, answers []models.Answer) []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", question.Title)
	fmt.Fprintf(&b, "Details: %s\n\n", question.Description)
	for i, a := range answers {
		fmt.Fprintf(&b, "Answer %d: %s\n", i+1, a.Content)
	}
	b.WriteString("\nSummarize these answers.")

	return []llm.Message{
		{Role: "system", Content: summarySystemInstruction},
		{Role: models.RoleUser, Content: b.String()},
	}
}
