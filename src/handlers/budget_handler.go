// backend/src/handlers/budget_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/budgetvisor/backend/src/config"
	"github.com/username/budgetvisor/backend/src/logger"
	"github.com/username/budgetvisor/backend/src/models"
	"github.com/username/budgetvisor/backend/src/security/validation"
	"github.com/username/budgetvisor/backend/src/services"
	"github.com/username/budgetvisor/backend/src/utils"
)

type BudgetHandler struct {
	budgetService services.BudgetService
}

func NewBudgetHandler(budgetService services.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// HandleUploadBudget receives a budget YAML document as multipart "file",
// validates and parses it, and makes it the session's active budget.
func (h *BudgetHandler) HandleUploadBudget(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}
	ctxLogger := logger.FromContext(r.Context())

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		ctxLogger.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("failed to process upload or file too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		ctxLogger.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "failed to retrieve file from request; ensure the 'file' field is used", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		utils.SendJSONError(w, fmt.Sprintf("file too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateClientContentType(fileHeader.Header.Get("Content-Type")); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		ctxLogger.Warn("Budget upload failed content validation", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	budget, err := h.budgetService.ProcessBudgetUpload(file, sessionID)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		ctxLogger.Error("Budget upload failed", "error", err)
		utils.SendJSONError(w, "failed to store budget", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(budget); err != nil {
		ctxLogger.Error("Error encoding budget response", "error", err)
	}
}

// HandleGetBudget returns the session's parsed budget trees.
func (h *BudgetHandler) HandleGetBudget(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	budget, err := h.budgetService.GetBudget(sessionID)
	if err != nil {
		writeBudgetError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(budget)
}

// HandleGetFlatCategories returns the editor's flattened row view.
func (h *BudgetHandler) HandleGetFlatCategories(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	rows, err := h.budgetService.GetFlatCategories(sessionID)
	if err != nil {
		writeBudgetError(w, r, err)
		return
	}
	if rows == nil {
		rows = []models.FlatCategoryRow{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// HandleApplyEdits applies a batch of editor changes. The batch is atomic:
// any invalid edit rejects all of them.
func (h *BudgetHandler) HandleApplyEdits(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}
	ctxLogger := logger.FromContext(r.Context())

	var edits []models.CategoryEdit
	if err := json.NewDecoder(r.Body).Decode(&edits); err != nil {
		utils.SendJSONError(w, "invalid request body: expected a JSON array of edits", http.StatusBadRequest)
		return
	}
	if len(edits) == 0 {
		utils.SendJSONError(w, "no edits supplied", http.StatusBadRequest)
		return
	}

	budget, err := h.budgetService.ApplyEdits(sessionID, edits)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeBudgetError(w, r, err)
		return
	}

	ctxLogger.Info("Budget edits accepted", "edits", len(edits))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(budget)
}

// HandleExportBudget streams the session's budget back as YAML.
func (h *BudgetHandler) HandleExportBudget(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	document, err := h.budgetService.ExportDocument(sessionID)
	if err != nil {
		writeBudgetError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="budget.yaml"`)
	w.Write(document)
}

// writeBudgetError maps budget service errors onto HTTP statuses.
func writeBudgetError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNoBudget) {
		utils.SendJSONError(w, "no budget uploaded for this session", http.StatusNotFound)
		return
	}
	logger.FromContext(r.Context()).Error("Budget request failed", "error", err)
	utils.SendJSONError(w, "internal error handling budget", http.StatusInternalServerError)
}
