package model

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/budgetvisor/backend/src/models"
)

// dateLayout is how record dates are stored in sqlite; lexicographic order
// equals chronological order, so the session+date index stays useful.
const dateLayout = "2006-01-02"

// InsertActualRecords stores a batch of parsed actuals for one session inside
// a single transaction. Amounts are stored as decimal strings, never floats.
func InsertActualRecords(db *sql.DB, sessionID string, records []models.ActualRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO actual_records
		(session_id, raw_label, amount, date, source)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, record := range records {
		_, err := stmt.Exec(sessionID, record.RawLabel, record.Amount.String(), record.Date.Format(dateLayout), record.Source)
		if err != nil {
			return 0, fmt.Errorf("error inserting actual record: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing actual records: %w", err)
	}
	return inserted, nil
}

// GetActualRecords returns all stored actuals for a session ordered by date
// then insertion order, keeping downstream computations deterministic.
func GetActualRecords(db *sql.DB, sessionID string) ([]models.ActualRecord, error) {
	rows, err := db.Query(`
		SELECT id, raw_label, amount, date, source
		FROM actual_records
		WHERE session_id = ?
		ORDER BY date ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying actual records: %w", err)
	}
	defer rows.Close()

	var records []models.ActualRecord
	for rows.Next() {
		var record models.ActualRecord
		var amountStr, dateStr string
		if err := rows.Scan(&record.ID, &record.RawLabel, &amountStr, &dateStr, &record.Source); err != nil {
			return nil, fmt.Errorf("error scanning actual record: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q for record %d: %w", amountStr, record.ID, err)
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt date %q for record %d: %w", dateStr, record.ID, err)
		}
		record.Amount = amount
		record.Date = date
		records = append(records, record)
	}
	return records, rows.Err()
}

// DeleteActualRecords removes every stored actual for a session. Returns the
// number of deleted rows.
func DeleteActualRecords(db *sql.DB, sessionID string) (int64, error) {
	res, err := db.Exec(`DELETE FROM actual_records WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("error deleting actual records: %w", err)
	}
	return res.RowsAffected()
}
