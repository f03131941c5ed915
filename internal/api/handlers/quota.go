package handlers

import (
	"errors"
	"net/http"

	"clientflow/internal/app"
	"clientflow/internal/logger"
	quotaService "clientflow/internal/service/quota"
)

type QuotaResponse struct {
	Tier         string `json:"tier"`
	MonthlyLimit int    `json:"monthlyLimit"`
	UsageCount   int    `json:"usageCount"`
	Remaining    int    `json:"remaining"`
}

// QuotaHandlers serves the usage endpoint.
type QuotaHandlers struct {
	config  *app.Config
	service *quotaService.Service
}

func NewQuotaHandlers(config *app.Config) *QuotaHandlers {
	return &QuotaHandlers{
		config:  config,
		service: quotaService.NewService(config.DB),
	}
}

// GetQuotaHandler returns the user's current usage against their tier limit.
func (qh *QuotaHandlers) GetQuotaHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r, qh.config.DB)
	if err != nil {
		sendError(w, http.StatusNotFound, "User not found", err)
		return
	}

	record, err := qh.service.Usage(user.ID)
	if err != nil {
		if errors.Is(err, quotaService.ErrNoQuotaRecord) {
			sendError(w, http.StatusNotFound, "Quota record not found", nil)
			return
		}
		logger.Log.WithError(err).Error("Error retrieving quota")
		sendError(w, http.StatusInternalServerError, "Error retrieving quota", err)
		return
	}

	sendJSON(w, http.StatusOK, QuotaResponse{
		Tier:         record.Tier,
		MonthlyLimit: record.MonthlyLimit,
		UsageCount:   record.UsageCount,
		Remaining:    record.Remaining(),
	})
}
