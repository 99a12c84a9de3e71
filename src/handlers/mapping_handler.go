// backend/src/handlers/mapping_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/budgetvisor/backend/src/database"
	"github.com/username/budgetvisor/backend/src/logger"
	"github.com/username/budgetvisor/backend/src/model"
	"github.com/username/budgetvisor/backend/src/models"
	"github.com/username/budgetvisor/backend/src/security/validation"
	"github.com/username/budgetvisor/backend/src/services"
	"github.com/username/budgetvisor/backend/src/utils"
)

// MappingHandler manages the user's saved label→category mappings: the alias
// table the matcher consults when exact matching fails.
type MappingHandler struct {
	budgetService services.BudgetService
	reportService services.ReportService
}

func NewMappingHandler(budgetService services.BudgetService, reportService services.ReportService) *MappingHandler {
	return &MappingHandler{budgetService: budgetService, reportService: reportService}
}

// HandleListMappings returns all mappings for the session, importable and
// exportable as-is.
func (h *MappingHandler) HandleListMappings(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	mappings, err := model.GetCategoryMappings(database.DB, sessionID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error listing category mappings", "error", err)
		utils.SendJSONError(w, "failed to list mappings", http.StatusInternalServerError)
		return
	}
	if mappings == nil {
		mappings = []models.CategoryMapping{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mappings)
}

// HandleAddMapping saves one mapping. The target must name an existing
// budget category so the alias can actually resolve.
func (h *MappingHandler) HandleAddMapping(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}
	ctxLogger := logger.FromContext(r.Context())

	var mapping models.CategoryMapping
	if err := json.NewDecoder(r.Body).Decode(&mapping); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	mapping.ActualLabel = validation.SanitizeText(validation.StripUnprintable(mapping.ActualLabel))
	mapping.BudgetCategory = validation.SanitizeText(validation.StripUnprintable(mapping.BudgetCategory))
	if err := validation.ValidateMappingFields(mapping.ActualLabel, mapping.BudgetCategory); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The mapping target has to exist in the current budget tree.
	budget, err := h.budgetService.GetBudget(sessionID)
	if err != nil {
		writeBudgetError(w, r, err)
		return
	}
	found := false
	for _, node := range budget.PreOrder() {
		if !node.IsSynthetic && node.Name == mapping.BudgetCategory {
			found = true
			break
		}
	}
	if !found {
		utils.SendJSONError(w, "budget_category does not match any category in the current budget", http.StatusUnprocessableEntity)
		return
	}

	id, err := model.InsertCategoryMapping(database.DB, sessionID, mapping)
	if err != nil {
		if errors.Is(err, model.ErrMappingExists) {
			utils.SendJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		ctxLogger.Error("Error inserting category mapping", "error", err)
		utils.SendJSONError(w, "failed to save mapping", http.StatusInternalServerError)
		return
	}
	mapping.ID = id

	h.reportService.InvalidateSessionCache(sessionID)
	ctxLogger.Info("Category mapping saved", "label", mapping.ActualLabel, "category", mapping.BudgetCategory)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(mapping)
}

// HandleDeleteMapping removes one mapping by ID.
func (h *MappingHandler) HandleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "invalid mapping id", http.StatusBadRequest)
		return
	}

	deleted, err := model.DeleteCategoryMapping(database.DB, sessionID, id)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error deleting category mapping", "id", id, "error", err)
		utils.SendJSONError(w, "failed to delete mapping", http.StatusInternalServerError)
		return
	}
	if !deleted {
		utils.SendJSONError(w, "mapping not found", http.StatusNotFound)
		return
	}

	h.reportService.InvalidateSessionCache(sessionID)
	w.WriteHeader(http.StatusNoContent)
}
