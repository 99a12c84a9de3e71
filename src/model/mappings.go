package model

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/username/budgetvisor/backend/src/models"
)

var ErrMappingExists = errors.New("a mapping for this label already exists")

// InsertCategoryMapping saves one label→category association for a session.
// The (session, label) pair is unique; re-mapping a label requires deleting
// the old mapping first.
func InsertCategoryMapping(db *sql.DB, sessionID string, mapping models.CategoryMapping) (int64, error) {
	res, err := db.Exec(`INSERT INTO category_mappings (session_id, actual_label, budget_category)
		VALUES (?, ?, ?)`, sessionID, mapping.ActualLabel, mapping.BudgetCategory)
	if err != nil {
		// sqlite reports the UNIQUE(session_id, actual_label) violation as a
		// constraint error; surface it as a domain error the handler can map
		// to 409.
		if isUniqueViolation(err) {
			return 0, ErrMappingExists
		}
		return 0, fmt.Errorf("error inserting category mapping: %w", err)
	}
	return res.LastInsertId()
}

// GetCategoryMappings returns all mappings for a session in insertion order.
func GetCategoryMappings(db *sql.DB, sessionID string) ([]models.CategoryMapping, error) {
	rows, err := db.Query(`
		SELECT id, actual_label, budget_category, created_at
		FROM category_mappings
		WHERE session_id = ?
		ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying category mappings: %w", err)
	}
	defer rows.Close()

	var mappings []models.CategoryMapping
	for rows.Next() {
		var m models.CategoryMapping
		if err := rows.Scan(&m.ID, &m.ActualLabel, &m.BudgetCategory, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning category mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// DeleteCategoryMapping removes one mapping by ID, scoped to the session so
// one session can never delete another's mappings.
func DeleteCategoryMapping(db *sql.DB, sessionID string, id int64) (bool, error) {
	res, err := db.Exec(`DELETE FROM category_mappings WHERE id = ? AND session_id = ?`, id, sessionID)
	if err != nil {
		return false, fmt.Errorf("error deleting category mapping: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// isUniqueViolation detects sqlite unique-constraint failures without
// depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "constraint failed")
}
