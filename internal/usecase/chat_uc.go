package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"carbusiness-backend/internal/domain"
	"carbusiness-backend/internal/domain/ports/adapter"
	"carbusiness-backend/internal/infra/i18n"
	"carbusiness-backend/internal/infra/metrics"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// ChatUseCase drives the conversational payment-collection flow. It is
// stateless by replay: every call carries the full prior transcript, so no
// session storage exists on this side.
type ChatUseCase interface {
	// Converse returns the next assistant turn. When proofURL and userID
	// are both set the turn is deterministic: a code is minted and
	// disclosed without consulting the completion API.
	Converse(ctx context.Context, transcript []adapter.Message, proofURL, userID string) (string, error)
}

type chatUC struct {
	ai         adapter.AIServiceAdapter
	activation ActivationUseCase
	tr         *i18n.Translator
	model      string
	log        *zerolog.Logger
}

func NewChatUseCase(
	ai adapter.AIServiceAdapter,
	activation ActivationUseCase,
	tr *i18n.Translator,
	model string,
	logger *zerolog.Logger,
) *chatUC {
	l := logger.With().Str("component", "ChatUC").Logger()
	return &chatUC{ai: ai, activation: activation, tr: tr, model: model, log: &l}
}

func (c *chatUC) Converse(ctx context.Context, transcript []adapter.Message, proofURL, userID string) (string, error) {
	// Deterministic branch: uploaded proof short-circuits the LLM.
	if proofURL != "" && userID != "" {
		res, err := c.activation.MintFromUpload(ctx, userID, proofURL)
		if err != nil {
			return "", err
		}
		metrics.IncChatTurn("upload")
		return res.Message, nil
	}

	branch := "relay"
	if len(transcript) == 0 {
		branch = "greeting"
	}

	messages := make([]adapter.Message, 0, len(transcript)+1)
	messages = append(messages, adapter.Message{Role: "system", Content: c.tr.SystemPrompt()})
	messages = append(messages, transcript...)

	reply, err := c.ai.Chat(ctx, c.model, messages)
	if err != nil {
		metrics.IncChatUpstreamError()
		c.log.Error().Err(err).Str("model", c.model).Msg("completion API call failed")
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	metrics.IncChatTurn(branch)
	return reply, nil
}
