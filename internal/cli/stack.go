package cli

import (
	"context"
	"errors"
	"fmt"

	"finchat/internal/amqp"
	"finchat/internal/backend"
	"finchat/internal/compose"
	"finchat/internal/config"
	"finchat/internal/facts"
	"finchat/internal/llm"
	"finchat/internal/log"
	"finchat/internal/services"
)

// Stack is the answering pipeline plus the resources it holds open.
type Stack struct {
	Chat    *services.ChatService
	Backend *backend.Result
	// Publisher is nil when AMQP_URL is empty or the broker is unreachable.
	Publisher *amqp.Client
}

// NewStack builds the ledger backend, the generator and the chat service
// from cfg. An unreachable broker only disables the audit trail.
func NewStack(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Stack, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolve timezone: %w", err)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger, loc).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, err
	}

	gen, err := llm.New(llm.Config{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		Endpoint: cfg.LLMEndpoint(),
		Timeout:  cfg.LLMTimeout,
	})
	if err != nil {
		logger.WarnContext(ctx, "LLM provider unavailable, open-ended questions will fail",
			log.FieldProvider, cfg.LLMProvider, log.FieldError, err)
		gen = llm.Unavailable(cfg.LLMProvider, err)
	}

	s := &Stack{Backend: res}

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without audit trail", log.FieldError, err)
		} else {
			logger.InfoContext(ctx, "Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			s.Publisher = client
			publisher = client
		}
	}

	engine := facts.NewEngine(res.Store, facts.WithLocation(loc))
	s.Chat = services.NewChatService(engine, compose.New(cfg.CurrencySymbol), gen, publisher)
	return s, nil
}

// Close releases the broker connection and the backend.
func (s *Stack) Close() error {
	var errs []error
	if s.Publisher != nil {
		errs = append(errs, s.Publisher.Close())
	}
	errs = append(errs, s.Backend.Close())
	return errors.Join(errs...)
}
