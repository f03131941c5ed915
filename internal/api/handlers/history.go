package handlers

import (
	"errors"
	"net/http"
	"time"

	"clientflow/internal/app"
	"clientflow/internal/logger"
	"clientflow/internal/repository/db"
	"clientflow/internal/service/history"
	"clientflow/internal/service/llm"
	"clientflow/internal/stream"
)

type HistoryData struct {
	ID              string                      `json:"id"`
	OriginalMessage string                      `json:"originalMessage"`
	Context         llm.RequestContext          `json:"context"`
	Variants        []stream.AccumulatedVariant `json:"variants"`
	Model           string                      `json:"model"`
	AvgConfidence   float64                     `json:"avgConfidence"`
	CreatedAt       string                      `json:"createdAt"`
}

type HistoryListResponse struct {
	History []HistoryData `json:"history"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HistoryHandlers serves the saved-generation endpoints.
type HistoryHandlers struct {
	config  *app.Config
	service *history.Service
}

func NewHistoryHandlers(config *app.Config) *HistoryHandlers {
	return &HistoryHandlers{
		config:  config,
		service: history.NewService(config.DB),
	}
}

// ListHistoryHandler returns the user's saved generations, newest first.
func (hh *HistoryHandlers) ListHistoryHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r, hh.config.DB)
	if err != nil {
		sendError(w, http.StatusNotFound, "User not found", err)
		return
	}

	records, err := hh.service.List(user.ID)
	if err != nil {
		logger.Log.WithError(err).Error("Error listing response history")
		sendError(w, http.StatusInternalServerError, "Error retrieving history", err)
		return
	}

	resp := HistoryListResponse{History: make([]HistoryData, 0, len(records))}
	for i := range records {
		resp.History = append(resp.History, toHistoryData(&records[i]))
	}
	sendJSON(w, http.StatusOK, resp)
}

// GetHistoryHandler returns one saved generation.
func (hh *HistoryHandlers) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r, hh.config.DB)
	if err != nil {
		sendError(w, http.StatusNotFound, "User not found", err)
		return
	}

	record, err := hh.service.Get(user.ID, r.PathValue("id"))
	if err != nil {
		sendHistoryError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, toHistoryData(record))
}

// DeleteHistoryHandler removes one saved generation.
func (hh *HistoryHandlers) DeleteHistoryHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r, hh.config.DB)
	if err != nil {
		sendError(w, http.StatusNotFound, "User not found", err)
		return
	}

	if err := hh.service.Delete(user.ID, r.PathValue("id")); err != nil {
		sendHistoryError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, DeleteResponse{Success: true, Message: "History record deleted"})
}

func sendHistoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, history.ErrNotFound):
		sendError(w, http.StatusNotFound, "History record not found", nil)
	case errors.Is(err, history.ErrUnauthorized):
		// Do not reveal that the record exists.
		sendError(w, http.StatusNotFound, "History record not found", nil)
	default:
		logger.Log.WithError(err).Error("Error accessing response history")
		sendError(w, http.StatusInternalServerError, "Error accessing history", err)
	}
}

func toHistoryData(record *db.ResponseHistory) HistoryData {
	return HistoryData{
		ID:              record.ID,
		OriginalMessage: record.OriginalMessage,
		Context:         record.Context,
		Variants:        record.Variants,
		Model:           record.Model,
		AvgConfidence:   record.AvgConfidence,
		CreatedAt:       record.CreatedAt.Format(time.RFC3339),
	}
}
