package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"carbusiness-backend/internal/domain"
	"carbusiness-backend/internal/domain/model"
	"carbusiness-backend/internal/domain/ports/repository"
	"carbusiness-backend/internal/infra/i18n"
	"carbusiness-backend/internal/infra/metrics"
)

// Compile-time check
var _ ActivationUseCase = (*activationUC)(nil)

// MintResult is returned by both minting paths. Code is only populated when
// the caller is allowed to disclose it (conversational upload path); the
// notify path relays the code through the operator instead and leaves it
// empty here.
type MintResult struct {
	Code        string
	WhatsAppURL string
	ExpiresAt   time.Time
	Message     string
}

// RedemptionResult is the soft-failure contract of redemption: callers
// distinguish outcomes via Success, never via the error channel.
type RedemptionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ActivationUseCase interface {
	// MintFromClaim validates a payment claim, rate-limits the caller,
	// persists a pending code and returns the operator notification link.
	// The minted code is withheld from the result.
	MintFromClaim(ctx context.Context, claim model.PaymentClaim, userID string) (*MintResult, error)
	// MintFromUpload mints a code for a proof uploaded through an
	// authenticated session; the code is disclosed in the result.
	MintFromUpload(ctx context.Context, userID, proofURL string) (*MintResult, error)
	// Redeem exchanges a code for premium status on the caller's profile.
	Redeem(ctx context.Context, userID, code string) (RedemptionResult, error)
	// Reject moves a pending code to rejected (admin moderation).
	Reject(ctx context.Context, codeID string) error
	// ExpireStale sweeps pending codes past their expiry.
	ExpireStale(ctx context.Context) (int64, error)
	// ListCodes returns codes by status for the moderation console.
	ListCodes(ctx context.Context, status model.CodeStatus, offset, limit int) ([]*model.ActivationCode, error)
	// Stats tallies codes per status for the moderation console.
	Stats(ctx context.Context) (CodeStats, error)
}

// CodeStats is the per-status code tally served by the admin stats endpoint.
type CodeStats struct {
	Pending   int64 `json:"pending"`
	Activated int64 `json:"activated"`
	Rejected  int64 `json:"rejected"`
	Expired   int64 `json:"expired"`
}

type activationUC struct {
	codes            repository.ActivationCodeRepository
	txm              repository.TransactionManager
	operatorWhatsApp string
	tr               *i18n.Translator
	log              *zerolog.Logger
	now              func() time.Time
}

// NewActivationUseCase builds the activation flow. txm may be nil; minting
// then runs non-transactionally, which in-memory test doubles rely on.
func NewActivationUseCase(
	codes repository.ActivationCodeRepository,
	txm repository.TransactionManager,
	operatorWhatsApp string,
	tr *i18n.Translator,
	logger *zerolog.Logger,
) *activationUC {
	l := logger.With().Str("component", "ActivationUC").Logger()
	return &activationUC{
		codes:            codes,
		txm:              txm,
		operatorWhatsApp: operatorWhatsApp,
		tr:               tr,
		log:              &l,
		now:              time.Now,
	}
}

func (uc *activationUC) MintFromClaim(ctx context.Context, claim model.PaymentClaim, userID string) (*MintResult, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if fields := claim.Validate(); len(fields) > 0 {
		metrics.IncMintRejected("validation")
		return nil, domain.NewValidationError(fields)
	}

	tn := strings.TrimSpace(claim.TransactionNumber)
	code, err := uc.mint(ctx, userID, &tn, &claim.ProofURL)
	if err != nil {
		return nil, err
	}
	metrics.IncCodesMinted("notify")
	uc.log.Info().Str("user_id", userID).Str("code_id", code.ID).Msg("activation code minted from payment claim")

	// The deep link carries the claim details for the operator but never
	// the code itself: the user observes this channel too.
	text := uc.tr.T("mint.whatsapp_notify", claim.UserEmail, tn, claim.ProofURL)
	waURL := fmt.Sprintf("https://wa.me/%s?text=%s", uc.operatorWhatsApp, url.QueryEscape(text))

	return &MintResult{
		WhatsAppURL: waURL,
		ExpiresAt:   code.ExpiresAt,
		Message:     uc.tr.T("mint.success"),
	}, nil
}

func (uc *activationUC) MintFromUpload(ctx context.Context, userID, proofURL string) (*MintResult, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !model.ValidProofURL(proofURL) {
		metrics.IncMintRejected("validation")
		return nil, domain.NewValidationError(map[string]string{"fileUrl": "must be a valid https URL"})
	}

	code, err := uc.mint(ctx, userID, nil, &proofURL)
	if err != nil {
		return nil, err
	}
	metrics.IncCodesMinted("chat")
	uc.log.Info().Str("user_id", userID).Str("code_id", code.ID).Msg("activation code minted from uploaded proof")

	// Disclosed on purpose: the proof arrived through an authenticated
	// session, so the code goes straight back in the conversation.
	return &MintResult{
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt,
		Message:   uc.tr.T("chat.code_issued", code.Code),
	}, nil
}

// mint is the single code-minting capability shared by both paths. Keeping
// one generator and one persistence sequence prevents the two entry points
// from drifting apart.
func (uc *activationUC) mint(ctx context.Context, userID string, transactionNumber, proofURL *string) (*model.ActivationCode, error) {
	var code *model.ActivationCode

	// Count and insert run inside one transaction so two concurrent mints
	// cannot both pass the rate check.
	op := func(ctx context.Context, tx repository.Tx) error {
		recent, err := uc.codes.CountRecentByUser(ctx, tx, userID, model.MintRateWindow)
		if err != nil {
			return fmt.Errorf("count recent codes: %w", err)
		}
		if recent >= model.MintRateLimit {
			metrics.IncMintRejected("rate_limited")
			return domain.ErrRateLimited
		}

		value, err := generateActivationCode()
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}

		now := uc.now()
		code = &model.ActivationCode{
			ID:                uuid.NewString(),
			Code:              value,
			UserID:            &userID,
			TransactionNumber: transactionNumber,
			PaymentProofURL:   proofURL,
			Status:            model.CodeStatusPending,
			CreatedAt:         now,
			ExpiresAt:         now.Add(model.CodeTTL),
		}
		if err := uc.codes.Save(ctx, tx, code); err != nil {
			return fmt.Errorf("save activation code: %w", err)
		}
		return nil
	}

	var err error
	if uc.txm != nil {
		err = uc.txm.WithTx(ctx, pgx.TxOptions{}, op)
	} else {
		err = op(ctx, nil)
	}
	if err != nil {
		return nil, err
	}
	return code, nil
}

func (uc *activationUC) Redeem(ctx context.Context, userID, code string) (RedemptionResult, error) {
	if userID == "" {
		return RedemptionResult{}, domain.ErrUnauthenticated
	}

	canonical := strings.ToUpper(strings.TrimSpace(code))
	if !model.ValidCodeFormat(canonical) {
		// Malformed codes get the same inline answer as unknown ones; the
		// client renders Message either way.
		metrics.IncRedemption(false)
		return RedemptionResult{Success: false, Message: uc.tr.T("redeem.invalid")}, nil
	}

	outcome, err := uc.codes.Redeem(ctx, canonical, userID)
	if err != nil {
		return RedemptionResult{}, fmt.Errorf("redeem code: %w", err)
	}
	metrics.IncRedemption(outcome.Success)
	if outcome.Success {
		uc.log.Info().Str("user_id", userID).Msg("premium activated by code")
	}
	return RedemptionResult{Success: outcome.Success, Message: outcome.Message}, nil
}

func (uc *activationUC) Reject(ctx context.Context, codeID string) error {
	return uc.codes.UpdateStatus(ctx, nil, codeID, model.CodeStatusRejected)
}

func (uc *activationUC) ExpireStale(ctx context.Context) (int64, error) {
	n, err := uc.codes.ExpireStale(ctx, nil)
	if err != nil {
		return 0, err
	}
	metrics.AddCodesExpired(n)
	return n, nil
}

func (uc *activationUC) Stats(ctx context.Context) (CodeStats, error) {
	var st CodeStats
	for _, pair := range []struct {
		status model.CodeStatus
		dst    *int64
	}{
		{model.CodeStatusPending, &st.Pending},
		{model.CodeStatusActivated, &st.Activated},
		{model.CodeStatusRejected, &st.Rejected},
		{model.CodeStatusExpired, &st.Expired},
	} {
		n, err := uc.codes.CountByStatus(ctx, nil, pair.status)
		if err != nil {
			return CodeStats{}, err
		}
		*pair.dst = n
	}
	return st, nil
}

func (uc *activationUC) ListCodes(ctx context.Context, status model.CodeStatus, offset, limit int) ([]*model.ActivationCode, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.codes.ListByStatus(ctx, nil, status, offset, limit)
}
