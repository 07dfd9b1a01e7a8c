package db

// Schema for the signed-in session (a single row keyed by profile)
const createSessionTable = `
CREATE TABLE IF NOT EXISTS session (
    profile TEXT PRIMARY KEY,
    token TEXT NOT NULL DEFAULT '',
    user_type TEXT NOT NULL DEFAULT '',
    auth INTEGER NOT NULL DEFAULT 0,
    phone_number TEXT NOT NULL DEFAULT '',
    phone_hint TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    theme TEXT NOT NULL DEFAULT 'dark',
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const upsertSession = `
INSERT INTO session (profile, token, user_type, auth, phone_number, phone_hint, email, theme, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(profile) DO UPDATE SET
    token = excluded.token,
    user_type = excluded.user_type,
    auth = excluded.auth,
    phone_number = excluded.phone_number,
    phone_hint = excluded.phone_hint,
    email = excluded.email,
    theme = excluded.theme,
    updated_at = CURRENT_TIMESTAMP
`

const selectSession = `
SELECT token, user_type, auth, phone_number, phone_hint, email, theme, updated_at
FROM session WHERE profile = ?
`

const deleteSession = `
DELETE FROM session WHERE profile = ?
`

// Schema for cached baselines, one JSON array per entity
const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS snapshots (
    entity TEXT PRIMARY KEY,
    records TEXT NOT NULL,
    record_count INTEGER NOT NULL,
    saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const upsertSnapshot = `
INSERT OR REPLACE INTO snapshots (entity, records, record_count, saved_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
`

const selectSnapshot = `
SELECT records, saved_at FROM snapshots WHERE entity = ?
`

const selectSnapshotInfo = `
SELECT entity, record_count, saved_at FROM snapshots
ORDER BY entity ASC
`

const deleteSnapshots = `
DELETE FROM snapshots
`

// Schema for the local audit trail of write actions
const createAuditTable = `
CREATE TABLE IF NOT EXISTS audit (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    action TEXT NOT NULL,
    entity TEXT NOT NULL,
    record_id TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '',
    request_id TEXT NOT NULL DEFAULT '',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit(entity);
`

const insertAudit = `
INSERT INTO audit (action, entity, record_id, detail, request_id)
VALUES (?, ?, ?, ?, ?)
`

const selectAudit = `
SELECT id, action, entity, record_id, detail, request_id, created_at
FROM audit
ORDER BY id DESC
LIMIT ?
`

const selectAuditByEntity = `
SELECT id, action, entity, record_id, detail, request_id, created_at
FROM audit
WHERE entity = ?
ORDER BY id DESC
LIMIT ?
`
