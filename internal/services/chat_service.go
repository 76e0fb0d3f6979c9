package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"finchat/internal/amqp"
	"finchat/internal/compose"
	"finchat/internal/core"
	"finchat/internal/facts"
	"finchat/internal/intent"
	"finchat/internal/llm"
	"finchat/internal/log"
)

// EventPublisher sends audit events for answered questions.
type EventPublisher interface {
	PublishChatEvent(ctx context.Context, event *amqp.ChatEvent) error
}

// Answer is the reply to one chat message.
type Answer struct {
	Text   string
	Intent intent.Intent
}

// ChatService answers finance questions. Known question shapes are answered
// from ledger figures; everything else goes to the language model together
// with a fact sheet.
type ChatService struct {
	classifier *intent.Classifier
	facts      *facts.Engine
	composer   *compose.Composer
	generator  llm.Generator
	publisher  EventPublisher
}

// NewChatService wires the answering pipeline. publisher may be nil.
func NewChatService(engine *facts.Engine, composer *compose.Composer, generator llm.Generator, publisher EventPublisher) *ChatService {
	return &ChatService{
		classifier: intent.NewClassifier(),
		facts:      engine,
		composer:   composer,
		generator:  generator,
		publisher:  publisher,
	}
}

// Answer classifies message and produces the reply for userID.
func (s *ChatService) Answer(ctx context.Context, userID, message string) (Answer, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(message) == "" {
		return Answer{}, fmt.Errorf("%w: userId and message required", core.ErrValidation)
	}

	in := s.classifier.Classify(message)
	text, err := s.dispatch(ctx, in, userID, message)
	if err != nil {
		return Answer{Intent: in}, err
	}

	s.publish(ctx, userID, in, message, text)
	return Answer{Text: text, Intent: in}, nil
}

func (s *ChatService) dispatch(ctx context.Context, in intent.Intent, userID, message string) (string, error) {
	switch in.Kind {
	case intent.Remaining:
		r, err := s.facts.RemainingBudget(ctx, userID)
		if err != nil {
			return "", err
		}
		return s.composer.Remaining(r), nil

	case intent.Weekend:
		r, err := s.facts.RemainingBudget(ctx, userID)
		if err != nil {
			return "", err
		}
		return s.composer.Weekend(r, s.facts.WeekendAllowance(r.Remaining)), nil

	case intent.CategorySpend:
		r, err := s.facts.CategoryRemaining(ctx, userID, in.Category)
		if err != nil {
			return "", err
		}
		return s.composer.Category(r), nil

	case intent.Waste:
		r, err := s.facts.WastePercentage(ctx, userID)
		if err != nil {
			return "", err
		}
		return s.composer.Waste(r), nil

	default:
		return s.generate(ctx, userID, message)
	}
}

// generate sends the fact sheet to the model and returns its text as is.
func (s *ChatService) generate(ctx context.Context, userID, message string) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("%w: no LLM provider configured", core.ErrConfiguration)
	}

	snap, err := s.facts.Snapshot(ctx, userID)
	if err != nil {
		return "", err
	}

	text, err := s.generator.Generate(ctx, s.composer.Context(message, snap))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	if unverified := s.composer.UnverifiedAmounts(text, snap); len(unverified) > 0 {
		slog.WarnContext(ctx, "LLM answer quotes amounts not among the facts",
			log.FieldUserID, userID,
			log.FieldProvider, s.generator.Provider(),
			"amounts", unverified)
	}
	return text, nil
}

func (s *ChatService) publish(ctx context.Context, userID string, in intent.Intent, question, answer string) {
	if s.publisher == nil {
		return
	}

	event := amqp.NewChatEvent(userID, in.String(), question, answer)
	if err := s.publisher.PublishChatEvent(ctx, event); err != nil {
		slog.WarnContext(ctx, "Failed to publish chat event",
			log.FieldEventID, event.ID,
			log.FieldUserID, userID,
			log.FieldError, err)
	}
}
