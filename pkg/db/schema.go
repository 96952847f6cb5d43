package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Runs table: one row per validate or render invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    command TEXT NOT NULL,            -- validate, render, serve
    target TEXT,                      -- schemas dir, page path, etc.
    outcome TEXT NOT NULL,            -- ok, failed, fallback
    error_count INTEGER DEFAULT 0,
    duration_ms INTEGER DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_command ON runs(command);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

-- Validations table: per-document results of a validate run
CREATE TABLE IF NOT EXISTS validations (
    validation_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    filename TEXT NOT NULL,
    valid BOOLEAN NOT NULL,
    messages TEXT,                    -- newline-joined error messages
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_validations_run ON validations(run_id);
`
