// backend/src/handlers/report_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/budgetvisor/backend/src/logger"
	"github.com/username/budgetvisor/backend/src/models"
	"github.com/username/budgetvisor/backend/src/services"
	"github.com/username/budgetvisor/backend/src/utils"
)

const queryDateLayout = "2006-01-02"

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// parseDateRange reads the optional start/end query parameters. Both bounds
// are inclusive; either may be omitted for an open-ended range.
func parseDateRange(r *http.Request) (models.DateRange, error) {
	var dateRange models.DateRange
	if start := r.URL.Query().Get("start"); start != "" {
		parsed, err := time.Parse(queryDateLayout, start)
		if err != nil {
			return dateRange, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", start)
		}
		dateRange.Start = parsed
	}
	if end := r.URL.Query().Get("end"); end != "" {
		parsed, err := time.Parse(queryDateLayout, end)
		if err != nil {
			return dateRange, fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", end)
		}
		dateRange.End = parsed
	}
	if !dateRange.Start.IsZero() && !dateRange.End.IsZero() && dateRange.End.Before(dateRange.Start) {
		return dateRange, fmt.Errorf("end date precedes start date")
	}
	return dateRange, nil
}

// HandleGetVarianceReport serves the full planned-vs-actual report with ETag
// support so an unchanged report costs the client nothing to re-poll.
func (h *ReportHandler) HandleGetVarianceReport(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}
	ctxLogger := logger.FromContext(r.Context())

	dateRange, err := parseDateRange(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.reportService.GetVarianceReport(sessionID, dateRange)
	if err != nil {
		writeReportError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, private")
	// The generated-at stamp changes per computation; hash the stable parts.
	etagView := struct {
		Rows              []models.VarianceRow  `json:"rows"`
		UnclassifiedTotal decimal.Decimal       `json:"unclassified_total"`
		Unmatched         []models.ActualRecord `json:"unmatched"`
		Range             models.DateRange      `json:"range"`
	}{report.Rows, report.UnclassifiedTotal, report.Unmatched, report.Range}
	if currentETag, etagErr := utils.GenerateETag(etagView); etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("%q", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, clientETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(clientETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	} else if etagErr != nil {
		ctxLogger.Warn("Proceeding without ETag due to generation error", "error", etagErr)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		ctxLogger.Error("Error encoding variance report", "error", err)
	}
}

// HandleGetSummary serves the dashboard totals.
func (h *ReportHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	dateRange, err := parseDateRange(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := h.reportService.GetSummary(sessionID, dateRange)
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// HandleGetOverspending lists expense categories over plan beyond the
// threshold percentage (default 10).
func (h *ReportHandler) HandleGetOverspending(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	dateRange, err := parseDateRange(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	threshold := decimal.NewFromInt(10)
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			utils.SendJSONError(w, fmt.Sprintf("invalid threshold %q", raw), http.StatusBadRequest)
			return
		}
		threshold = parsed
	}

	entries, err := h.reportService.GetOverspending(sessionID, dateRange, threshold)
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.OverspendingEntry{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// HandleGetSavings lists under-budget expense categories with their headroom.
func (h *ReportHandler) HandleGetSavings(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	dateRange, err := parseDateRange(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	opportunities, err := h.reportService.GetSavings(sessionID, dateRange)
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	if opportunities == nil {
		opportunities = []models.SavingsOpportunity{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(opportunities)
}

// writeReportError maps report pipeline errors onto HTTP statuses.
func writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNoBudget) {
		utils.SendJSONError(w, "no budget uploaded for this session", http.StatusNotFound)
		return
	}
	logger.FromContext(r.Context()).Error("Report request failed", "error", err)
	utils.SendJSONError(w, "internal error computing report", http.StatusInternalServerError)
}
