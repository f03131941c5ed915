package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"clientflow/internal/app"
	"clientflow/internal/logger"
	"clientflow/internal/repository/db"
	clientService "clientflow/internal/service/client"
)

type ClientRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	Company           string `json:"company,omitempty"`
	RelationshipStage string `json:"relationshipStage,omitempty"`
}

type ClientData struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	Company           string `json:"company,omitempty"`
	RelationshipStage string `json:"relationshipStage"`
	CreatedAt         string `json:"createdAt"`
}

type ClientListResponse struct {
	Clients []ClientData `json:"clients"`
}

// ClientHandlers serves the client roster endpoints.
type ClientHandlers struct {
	config  *app.Config
	service *clientService.Service
}

func NewClientHandlers(config *app.Config) *ClientHandlers {
	return &ClientHandlers{
		config:  config,
		service: clientService.NewService(config.DB),
	}
}

// CreateClientHandler adds a client to the user's roster.
func (ch *ClientHandlers) CreateClientHandler(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := userFromContext(r, ch.config.DB)
	if err != nil {
		sendError(w, http.StatusNotFound, "User not found", err)
		return
	}

	record, err := ch.service.Create(user.ID, req.Name, req.Email, req.Company, req.RelationshipStage)
	if err != nil {
		sendError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	sendJSON(w, http.StatusCreated, toClientData(record))
}

// ListClientsHandler returns the user's clients.
func (ch *ClientHandlers) ListClientsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r, ch.config.DB)
	if err != nil {
		sendError(w, http.StatusNotFound, "User not found", err)
		return
	}

	records, err := ch.service.List(user.ID)
	if err != nil {
		logger.Log.WithError(err).Error("Error listing clients")
		sendError(w, http.StatusInternalServerError, "Error retrieving clients", err)
		return
	}

	resp := ClientListResponse{Clients: make([]ClientData, 0, len(records))}
	for i := range records {
		resp.Clients = append(resp.Clients, toClientData(&records[i]))
	}
	sendJSON(w, http.StatusOK, resp)
}

// GetClientHandler returns one client.
func (ch *ClientHandlers) GetClientHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r, ch.config.DB)
	if err != nil {
		sendError(w, http.StatusNotFound, "User not found", err)
		return
	}

	record, err := ch.service.Get(user.ID, r.PathValue("id"))
	if err != nil {
		sendClientError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, toClientData(record))
}

// DeleteClientHandler removes one client.
func (ch *ClientHandlers) DeleteClientHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r, ch.config.DB)
	if err != nil {
		sendError(w, http.StatusNotFound, "User not found", err)
		return
	}

	if err := ch.service.Delete(user.ID, r.PathValue("id")); err != nil {
		sendClientError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, DeleteResponse{Success: true, Message: "Client deleted"})
}

func sendClientError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clientService.ErrNotFound), errors.Is(err, clientService.ErrUnauthorized):
		sendError(w, http.StatusNotFound, "Client not found", nil)
	default:
		logger.Log.WithError(err).Error("Error accessing client")
		sendError(w, http.StatusInternalServerError, "Error accessing client", err)
	}
}

func toClientData(record *db.Client) ClientData {
	return ClientData{
		ID:                record.ID,
		Name:              record.Name,
		Email:             record.Email,
		Company:           record.Company,
		RelationshipStage: record.RelationshipStage,
		CreatedAt:         record.CreatedAt.Format(time.RFC3339),
	}
}
