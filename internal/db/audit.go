package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// AuditEntry is one write action issued from the console.
type AuditEntry struct {
	ID        int64
	Action    string // create, update, upload, complete
	Entity    models.Entity
	RecordID  string
	Detail    string
	RequestID string
	CreatedAt time.Time
}

// RecordAudit appends an entry to the audit trail
func (db *DB) RecordAudit(e AuditEntry) error {
	_, err := db.conn.Exec(insertAudit, e.Action, string(e.Entity), e.RecordID, e.Detail, e.RequestID)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the newest entries first. An empty entity lists all.
func (db *DB) ListAudit(entity models.Entity, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows *sql.Rows
	var err error
	if entity == "" {
		rows, err = db.conn.Query(selectAudit, limit)
	} else {
		rows, err = db.conn.Query(selectAuditByEntity, string(entity), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query audit: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var entityName, ts string
		if err := rows.Scan(&e.ID, &e.Action, &entityName, &e.RecordID, &e.Detail, &e.RequestID, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Entity = models.Entity(entityName)
		e.CreatedAt, _ = parseTimestamp(ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
