package model

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoBudget is returned when a session has not uploaded a budget yet.
var ErrNoBudget = errors.New("no budget document stored for session")

// UpsertBudgetDocument stores (or replaces) the raw budget YAML for a
// session. The parsed tree is rebuilt from this document on load, so the
// document is the single source of truth.
func UpsertBudgetDocument(db *sql.DB, sessionID string, document string) error {
	_, err := db.Exec(`INSERT INTO budget_documents (session_id, document, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET document = excluded.document, updated_at = CURRENT_TIMESTAMP`,
		sessionID, document)
	if err != nil {
		return fmt.Errorf("error storing budget document: %w", err)
	}
	return nil
}

// GetBudgetDocument returns the stored budget YAML for a session.
func GetBudgetDocument(db *sql.DB, sessionID string) (string, error) {
	var document string
	err := db.QueryRow(`SELECT document FROM budget_documents WHERE session_id = ?`, sessionID).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoBudget
	}
	if err != nil {
		return "", fmt.Errorf("error querying budget document: %w", err)
	}
	return document, nil
}
