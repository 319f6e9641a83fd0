package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"chargesim/backend/services/charging-sim/internal/models"
	"chargesim/backend/services/charging-sim/internal/service"
)

// SessionsHandler exposes the session lifecycle over HTTP.
type SessionsHandler struct {
	engine *service.Engine
	logger *zap.Logger
}

// NewSessionsHandler builds handler set.
func NewSessionsHandler(engine *service.Engine, logger *zap.Logger) *SessionsHandler {
	return &SessionsHandler{engine: engine, logger: logger}
}

type createSessionRequest struct {
	StationID   string `json:"station_id"`
	ConnectorID string `json:"connector_id"`
}

type sessionStatusResponse struct {
	SessionID string               `json:"session_id"`
	Status    models.SessionStatus `json:"status"`
}

type stopSessionResponse struct {
	Message string                 `json:"message"`
	Report  models.ChargingSession `json:"report"`
}

// Create handles POST /sessions.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, err := h.engine.Create(r.Context(), req.StationID, req.ConnectorID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionStatusResponse{SessionID: session.ID, Status: session.Status})
}

// Start handles POST /sessions/{sessionID}/start.
func (h *SessionsHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.Start(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionStatusResponse{SessionID: session.ID, Status: session.Status})
}

// Get handles GET /sessions/{sessionID}. Reading a charging session advances
// its figures and may complete it.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.Poll(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Stop handles POST /sessions/{sessionID}/stop.
func (h *SessionsHandler) Stop(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Stop(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	message := "Session stopped"
	if result.AlreadyCompleted {
		message = "Session already completed"
	}
	writeJSON(w, http.StatusOK, stopSessionResponse{Message: message, Report: result.Session})
}

// List handles GET /sessions.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": h.engine.List(r.Context()),
	})
}

func (h *SessionsHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrStationNotFound):
		writeError(w, http.StatusNotFound, "Station not found")
	case errors.Is(err, service.ErrConnectorNotFound):
		writeError(w, http.StatusNotFound, "Connector not found")
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, service.ErrConnectorUnavailable):
		writeError(w, http.StatusBadRequest, "Connector not available")
	case errors.Is(err, service.ErrInvalidState):
		writeError(w, http.StatusBadRequest, "Session is not in a reserved state")
	default:
		h.logger.Error("session request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
