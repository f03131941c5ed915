package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"clientflow/internal/app"
	"clientflow/internal/logger"
	"clientflow/internal/service/generation"
	"clientflow/internal/service/llm"
	quotaService "clientflow/internal/service/quota"
	"clientflow/pkg/validation"
)

// GenerateRequest is the body of POST /api/responses/generate.
type GenerateRequest struct {
	OriginalMessage        string             `json:"originalMessage"`
	Context                llm.RequestContext `json:"context"`
	RefinementInstructions string             `json:"refinementInstructions,omitempty"`
	PreviousResponses      []string           `json:"previousResponses,omitempty"`
	Model                  string             `json:"model,omitempty"`
}

type validationErrorResponse struct {
	Error  string                  `json:"error"`
	Code   int                     `json:"code"`
	Fields []validation.FieldError `json:"fields"`
}

// GenerateHandlers owns the streaming generation endpoint.
type GenerateHandlers struct {
	config   *app.Config
	quota    *quotaService.Service
	pipeline *generation.Pipeline
}

// NewGenerateHandlers creates the generation endpoint handlers.
func NewGenerateHandlers(config *app.Config, provider llm.Provider) *GenerateHandlers {
	return &GenerateHandlers{
		config:   config,
		quota:    quotaService.NewService(config.DB),
		pipeline: generation.NewPipeline(config.DB, provider),
	}
}

// GenerateStreamHandler is the SSE endpoint producing response variants.
// Quota is checked before any model call; once streaming starts, failures
// surface as an in-stream error event rather than an HTTP status.
func (gh *GenerateHandlers) GenerateStreamHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if errs := validation.ValidateGenerateRequest(req.OriginalMessage, req.Context); errs != nil {
		sendJSON(w, http.StatusBadRequest, validationErrorResponse{
			Error:  "validation_failed",
			Code:   http.StatusBadRequest,
			Fields: errs,
		})
		return
	}

	user, err := userFromContext(r, gh.config.DB)
	if err != nil {
		logger.Log.WithError(err).Error("Error getting user")
		sendError(w, http.StatusNotFound, "User not found", err)
		return
	}

	quota, err := gh.quota.Reserve(user.ID)
	if err != nil {
		switch {
		case errors.Is(err, quotaService.ErrQuotaExceeded):
			sendError(w, http.StatusForbidden, "Monthly generation quota exceeded", nil)
		case errors.Is(err, quotaService.ErrNoQuotaRecord):
			sendError(w, http.StatusNotFound, "Quota record not found", nil)
		default:
			sendError(w, http.StatusInternalServerError, "Error checking quota", err)
		}
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		sendError(w, http.StatusInternalServerError, "Streaming not supported", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	genReq := generation.Request{
		UserID:                 user.ID,
		OriginalMessage:        req.OriginalMessage,
		Context:                req.Context,
		RefinementInstructions: req.RefinementInstructions,
		PreviousResponses:      req.PreviousResponses,
		Model:                  req.Model,
	}
	if quota.Tier == quotaService.PremiumTier {
		genReq.StyleProfile = user.CommunicationStyle
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"variants": generation.VariantCount(genReq),
		"refining": genReq.RefinementInstructions != "",
	}).Info("Generation stream started")

	for ev := range gh.pipeline.Run(r.Context(), genReq) {
		payload, err := json.Marshal(ev)
		if err != nil {
			logger.Log.WithError(err).Error("Error marshaling stream event")
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
}
