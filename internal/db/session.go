package db

import (
	"database/sql"
	"fmt"
	"time"
)

// DefaultProfile is the session key used when no profile is named.
const DefaultProfile = "default"

// SessionRow is the persisted part of the console session.
type SessionRow struct {
	Token       string
	UserType    string
	Auth        bool
	PhoneNumber string
	PhoneHint   string
	Email       string
	Theme       string
	UpdatedAt   time.Time
}

// SaveSession stores the session of a profile, replacing any previous one
func (db *DB) SaveSession(profile string, s SessionRow) error {
	if profile == "" {
		profile = DefaultProfile
	}
	theme := s.Theme
	if theme == "" {
		theme = "dark"
	}
	_, err := db.conn.Exec(upsertSession, profile, s.Token, s.UserType, s.Auth,
		s.PhoneNumber, s.PhoneHint, s.Email, theme)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession returns the stored session of a profile. ok is false when
// nothing has been saved yet.
func (db *DB) LoadSession(profile string) (SessionRow, bool, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	var s SessionRow
	var updatedAt string
	err := db.conn.QueryRow(selectSession, profile).Scan(
		&s.Token, &s.UserType, &s.Auth, &s.PhoneNumber, &s.PhoneHint, &s.Email, &s.Theme, &updatedAt)
	if err == sql.ErrNoRows {
		return SessionRow{}, false, nil
	}
	if err != nil {
		return SessionRow{}, false, fmt.Errorf("failed to load session: %w", err)
	}
	s.UpdatedAt, _ = parseTimestamp(updatedAt)
	return s, true, nil
}

// ClearSession removes the stored session of a profile (logout)
func (db *DB) ClearSession(profile string) error {
	if profile == "" {
		profile = DefaultProfile
	}
	if _, err := db.conn.Exec(deleteSession, profile); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
