package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// SnapshotInfo describes a cached baseline.
type SnapshotInfo struct {
	Entity  models.Entity
	Count   int
	SavedAt time.Time
}

// SaveSnapshot caches the baseline collection of an entity
func (db *DB) SaveSnapshot(entity models.Entity, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s snapshot: %w", entity, err)
	}
	if _, err := db.conn.Exec(upsertSnapshot, string(entity), string(data), len(records)); err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", entity, err)
	}
	return nil
}

// LoadSnapshot returns the cached baseline of an entity. ok is false when
// there is none.
func (db *DB) LoadSnapshot(entity models.Entity) (records []models.Record, savedAt time.Time, ok bool, err error) {
	var data, ts string
	err = db.conn.QueryRow(selectSnapshot, string(entity)).Scan(&data, &ts)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to load %s snapshot: %w", entity, err)
	}

	records, err = models.DecodeRecords([]byte(data))
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to decode %s snapshot: %w", entity, err)
	}
	savedAt, _ = parseTimestamp(ts)
	return records, savedAt, true, nil
}

// ListSnapshots returns every cached baseline
func (db *DB) ListSnapshots() ([]SnapshotInfo, error) {
	rows, err := db.conn.Query(selectSnapshotInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var entity, ts string
		if err := rows.Scan(&entity, &info.Count, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		info.Entity = models.Entity(entity)
		info.SavedAt, _ = parseTimestamp(ts)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// ClearSnapshots drops every cached baseline
func (db *DB) ClearSnapshots() error {
	if _, err := db.conn.Exec(deleteSnapshots); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}
