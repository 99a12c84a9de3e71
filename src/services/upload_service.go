// backend/src/services/upload_service.go
package services

import (
	"fmt"
	"io"
	"time"

	"github.com/username/budgetvisor/backend/src/database"
	"github.com/username/budgetvisor/backend/src/logger"
	"github.com/username/budgetvisor/backend/src/model"
	"github.com/username/budgetvisor/backend/src/models"
	"github.com/username/budgetvisor/backend/src/parsers"
	"github.com/username/budgetvisor/backend/src/security/validation"
)

type uploadServiceImpl struct {
	reportService ReportService
}

// NewUploadService creates the actuals upload service. The report service is
// injected so every successful upload invalidates the session's cached
// reports.
func NewUploadService(reportService ReportService) UploadService {
	return &uploadServiceImpl{reportService: reportService}
}

func (s *uploadServiceImpl) ProcessUpload(fileReader io.Reader, sessionID, source, filename string, filesize int64) (*UploadResult, error) {
	overallStartTime := time.Now()
	logger.L.Info("ProcessUpload START", "sessionID", sessionID, "source", source, "filename", filename, "filesize", filesize)

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	records, err := parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	// Labels come from arbitrary export files and get echoed back to the UI;
	// sanitize before they touch the database.
	for i := range records {
		records[i].RawLabel = validation.SanitizeText(validation.StripUnprintable(records[i].RawLabel))
	}

	inserted, err := model.InsertActualRecords(database.DB, sessionID, records)
	if err != nil {
		return nil, err
	}

	if s.reportService != nil {
		s.reportService.InvalidateSessionCache(sessionID)
	}

	logger.L.Info("ProcessUpload END", "sessionID", sessionID, "parsed", len(records),
		"inserted", inserted, "durationMs", time.Since(overallStartTime).Milliseconds())

	return &UploadResult{
		Source:        source,
		Filename:      filename,
		ParsedCount:   len(records),
		InsertedCount: inserted,
	}, nil
}

func (s *uploadServiceImpl) GetActuals(sessionID string) ([]models.ActualRecord, error) {
	return model.GetActualRecords(database.DB, sessionID)
}

func (s *uploadServiceImpl) DeleteActuals(sessionID string) (int64, error) {
	deleted, err := model.DeleteActualRecords(database.DB, sessionID)
	if err != nil {
		return 0, err
	}
	if s.reportService != nil {
		s.reportService.InvalidateSessionCache(sessionID)
	}
	logger.L.Info("Deleted session actuals", "sessionID", sessionID, "deleted", deleted)
	return deleted, nil
}
