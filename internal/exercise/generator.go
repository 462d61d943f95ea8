// Package exercise turns a chunk into a short practice question and reviews
// the learner's answer with an LLM.
package exercise

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chunkrecall/trainer/internal/llm"
	"github.com/chunkrecall/trainer/internal/logger"
)

// Completer is the part of llm.Client the generator needs.
type Completer interface {
	CompleteJSON(ctx context.Context, apiKey string, messages []llm.Message, schema llm.Schema, out any) error
}

// ErrEmptyAnswer is returned by Review for a blank learner answer.
var ErrEmptyAnswer = errors.New("exercise: answer is empty")

const exercisePrompt = `You are an encouraging English coach.

Japanese phrase (JP): %s
Target chunk (EN): %s
---
Create one short practice question **in ENGLISH** that requires the learner to use
the target chunk exactly once in a natural, everyday context.

Return JSON with keys:
- "question": the English prompt for the learner
- "answer_key": one model answer that correctly uses the chunk
`

const reviewPrompt = `You are a strict but kind English proof-reader.

Target chunk: %s
Learner answer: %s
Model answer: %s
---
(1) Score the learner's answer from 0-5.
(2) Suggest a more natural alternative if needed (single line, EN, empty if perfect).
(3) Explain the main improvement points in Japanese as bullet points.

Return JSON with keys "score", "better" and "comment".
`

var exerciseSchema = llm.Schema{
	Name: "exercise",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question":   map[string]any{"type": "string", "minLength": 1, "description": "English prompt for the learner"},
			"answer_key": map[string]any{"type": "string", "minLength": 1, "description": "One model answer using the chunk"},
		},
		"required":             []any{"question", "answer_key"},
		"additionalProperties": false,
	},
}

var reviewSchema = llm.Schema{
	Name: "review",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":   map[string]any{"type": "integer", "minimum": 0, "maximum": 5, "description": "Score 0-5"},
			"better":  map[string]any{"type": "string", "description": "Better alternative, empty if none"},
			"comment": map[string]any{"type": "string", "description": "Feedback in Japanese"},
		},
		"required":             []any{"score", "better", "comment"},
		"additionalProperties": false,
	},
}

// Exercise is a generated question with its model answer.
type Exercise struct {
	Question  string `json:"question"`
	AnswerKey string `json:"answer_key"`
}

// Complete reports whether both parts are present.
func (e Exercise) Complete() bool {
	return strings.TrimSpace(e.Question) != "" && strings.TrimSpace(e.AnswerKey) != ""
}

// Review is the model's verdict on one answer.
type Review struct {
	Score   int    `json:"score"`
	Better  string `json:"better"`
	Comment string `json:"comment"`
}

// Markdown renders the review the way the practice page shows it.
func (r Review) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Score:** %d/5\n\n", r.Score)
	if better := strings.TrimSpace(r.Better); better != "" {
		fmt.Fprintf(&b, "**Better:** %s\n\n", better)
	}
	b.WriteString(r.Comment)
	return b.String()
}

// Input is one run of the flow. Question and AnswerKey may carry a
// previously generated exercise; Answer may be blank.
type Input struct {
	JPPrompt string
	ENAnswer string
	Exercise Exercise
	Answer   string
}

// Result holds the exercise and, when an answer was given, its review.
type Result struct {
	Exercise  Exercise
	Generated bool
	Review    *Review
}

type Generator struct {
	llm Completer
}

func NewGenerator(c Completer) *Generator {
	return &Generator{llm: c}
}

// Generate asks for a new exercise for the chunk.
func (g *Generator) Generate(ctx context.Context, apiKey, jp, en string) (Exercise, error) {
	log := logger.FromContext(ctx).WithPrefix("exercise")
	log.Info("generating exercise for %q", en)

	var ex Exercise
	messages := []llm.Message{{Role: "user", Content: fmt.Sprintf(exercisePrompt, jp, en)}}
	if err := g.llm.CompleteJSON(ctx, apiKey, messages, exerciseSchema, &ex); err != nil {
		return Exercise{}, fmt.Errorf("generating exercise: %w", err)
	}
	ex.Question = strings.TrimSpace(ex.Question)
	ex.AnswerKey = strings.TrimSpace(ex.AnswerKey)
	return ex, nil
}

// Review scores answer against the exercise's model answer.
func (g *Generator) Review(ctx context.Context, apiKey, en, answer string, ex Exercise) (Review, error) {
	log := logger.FromContext(ctx).WithPrefix("exercise")
	if strings.TrimSpace(answer) == "" {
		return Review{}, ErrEmptyAnswer
	}
	log.Info("reviewing answer for %q", en)

	var r Review
	messages := []llm.Message{{Role: "user", Content: fmt.Sprintf(reviewPrompt, en, answer, ex.AnswerKey)}}
	if err := g.llm.CompleteJSON(ctx, apiKey, messages, reviewSchema, &r); err != nil {
		return Review{}, fmt.Errorf("reviewing answer: %w", err)
	}
	log.Debug("review score %d", r.Score)
	return r, nil
}

// Run generates an exercise unless in already carries a complete one, then
// reviews in.Answer when it is not blank.
func (g *Generator) Run(ctx context.Context, apiKey string, in Input) (Result, error) {
	res := Result{Exercise: in.Exercise}
	if !in.Exercise.Complete() {
		ex, err := g.Generate(ctx, apiKey, in.JPPrompt, in.ENAnswer)
		if err != nil {
			return Result{}, err
		}
		res.Exercise = ex
		res.Generated = true
	}

	if strings.TrimSpace(in.Answer) == "" {
		return res, nil
	}
	r, err := g.Review(ctx, apiKey, in.ENAnswer, in.Answer, res.Exercise)
	if err != nil {
		return res, err
	}
	res.Review = &r
	return res, nil
}
