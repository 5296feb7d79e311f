package web

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"carbusiness-backend/internal/domain"
	"carbusiness-backend/internal/domain/model"
	"carbusiness-backend/internal/domain/ports/adapter"
	"carbusiness-backend/internal/infra/logging"
)

const maxProofUploadBytes = 10 << 20 // 10 MiB

type notifyPaymentRequest struct {
	TransactionNumber string `json:"transactionNumber"`
	ProofURL          string `json:"proofUrl"`
	UserEmail         string `json:"userEmail"`
}

type notifyPaymentResponse struct {
	Success     bool   `json:"success"`
	WhatsAppURL string `json:"whatsappUrl"`
	Message     string `json:"message"`
}

func (s *Server) handleNotifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	var req notifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	claim := model.PaymentClaim{
		TransactionNumber: req.TransactionNumber,
		ProofURL:          req.ProofURL,
		UserEmail:         req.UserEmail,
	}
	if claim.UserEmail == "" {
		claim.UserEmail = id.Email
	}

	res, err := s.activationUC.MintFromClaim(ctx, claim, id.UserID)
	if err != nil {
		s.renderMintError(ctx, w, err)
		return
	}

	// res.Code is intentionally empty on this path; never echo it back.
	writeJSON(w, http.StatusOK, notifyPaymentResponse{
		Success:     true,
		WhatsAppURL: res.WhatsAppURL,
		Message:     res.Message,
	})
}

type chatRequest struct {
	Messages []adapter.Message `json:"messages"`
	FileURL  string            `json:"fileUrl"`
}

// chatResponse mirrors the completion-API envelope the web client already
// parses.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message adapter.Message `json:"message"`
}

func (s *Server) handleChatbot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	if s.limiter != nil && s.chatRate > 0 {
		key := "rate_limit:" + id.UserID + ":chatbot"
		ok, err := s.limiter.Allow(ctx, key, s.chatRate, time.Minute)
		if err != nil {
			logging.With(ctx, s.log).Error().Err(err).Msg("chat rate limiter unavailable")
		} else if !ok {
			writeError(w, http.StatusTooManyRequests, s.tr.T("mint.rate_limited"), nil)
			return
		}
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	reply, err := s.chatUC.Converse(ctx, req.Messages, req.FileURL, id.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, s.tr.T("mint.rate_limited"), nil)
		case errors.Is(err, domain.ErrUpstreamFailure):
			logging.With(ctx, s.log).Error().Err(err).Msg("chat upstream failure")
			writeError(w, http.StatusBadGateway, s.tr.T("chat.upstream_error"), nil)
		default:
			s.renderMintError(ctx, w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Choices: []chatChoice{{Message: adapter.Message{Role: "assistant", Content: reply}}},
	})
}

type activateRequest struct {
	ActivationCode string `json:"activation_code"`
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	// Redemption is a soft contract: wrong or expired codes come back as
	// {success:false} with HTTP 200, not as an HTTP error.
	res, err := s.activationUC.Redeem(ctx, id.UserID, req.ActivationCode)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("redeem failed")
		writeError(w, http.StatusInternalServerError, s.tr.T("error.internal"), nil)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	st, err := s.premiumUC.Status(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found", nil)
			return
		}
		logging.With(ctx, s.log).Error().Err(err).Msg("status lookup failed")
		writeError(w, http.StatusInternalServerError, s.tr.T("error.internal"), nil)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUploadProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxProofUploadBytes)
	if err := r.ParseMultipartForm(maxProofUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart body", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field", nil)
		return
	}
	defer file.Close()

	if !isPDF(header) {
		writeError(w, http.StatusBadRequest, s.tr.T("upload.invalid_type"), nil)
		return
	}

	url, err := s.storage.UploadProof(ctx, id.UserID, header.Filename, file)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("proof upload failed")
		writeError(w, http.StatusBadGateway, s.tr.T("upload.failed"), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Proofs must be PDFs. Both declared content type and extension are
// checked; the storage side treats the object as opaque.
func isPDF(h *multipart.FileHeader) bool {
	if strings.EqualFold(path.Ext(h.Filename), ".pdf") {
		return true
	}
	return h.Header.Get("Content-Type") == "application/pdf"
}

func (s *Server) handleAdminListCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := model.CodeStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = model.CodeStatusPending
	}
	switch status {
	case model.CodeStatusPending, model.CodeStatusActivated, model.CodeStatusRejected, model.CodeStatusExpired:
	default:
		writeError(w, http.StatusBadRequest, "Unknown status", nil)
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	codes, err := s.activationUC.ListCodes(ctx, status, offset, limit)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("list codes failed")
		writeError(w, http.StatusInternalServerError, s.tr.T("error.internal"), nil)
		return
	}
	if codes == nil {
		codes = []*model.ActivationCode{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"codes": codes})
}

func (s *Server) handleAdminRejectCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	codeID := chi.URLParam(r, "id")

	if err := s.activationUC.Reject(ctx, codeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Code not found or not pending", nil)
			return
		}
		logging.With(ctx, s.log).Error().Err(err).Msg("reject code failed")
		writeError(w, http.StatusInternalServerError, s.tr.T("error.internal"), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	codeStats, err := s.activationUC.Stats(ctx)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("code stats failed")
		writeError(w, http.StatusInternalServerError, s.tr.T("error.internal"), nil)
		return
	}
	premiumUsers, err := s.premiumUC.CountPremium(ctx)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("premium count failed")
		writeError(w, http.StatusInternalServerError, s.tr.T("error.internal"), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"premium_users": premiumUsers,
		"codes":         codeStats,
	})
}

// renderMintError maps mint-path domain errors onto the HTTP taxonomy.
func (s *Server) renderMintError(ctx context.Context, w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, s.tr.T("mint.validation_failed"), vErr.Fields)
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, s.tr.T("error.unauthenticated"), nil)
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, s.tr.T("mint.rate_limited"), nil)
	default:
		logging.With(ctx, s.log).Error().Err(err).Msg("mint failed")
		writeError(w, http.StatusInternalServerError, s.tr.T("error.internal"), nil)
	}
}
