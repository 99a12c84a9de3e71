// backend/src/handlers/session_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/username/budgetvisor/backend/src/logger"
	"github.com/username/budgetvisor/backend/src/security"
	"github.com/username/budgetvisor/backend/src/utils"
)

type SessionHandler struct {
	sessionService *security.SessionService
}

func NewSessionHandler(sessionService *security.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// HandleCreateSession issues a fresh session token. The front end calls this
// once on first load and sends the token with every data request.
func (h *SessionHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.New().String()
	token, err := h.sessionService.IssueToken(sessionID)
	if err != nil {
		logger.L.Error("Failed to issue session token", "error", err)
		utils.SendJSONError(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	logger.FromContext(r.Context()).Info("Session created", "sessionID", sessionID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"session_id": sessionID,
		"token":      token,
	})
}
