package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the artifact tables. Timestamps are Unix milliseconds so
// both drivers read them back the same way.
const Schema = `
CREATE TABLE IF NOT EXISTS artifacts (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    path TEXT NOT NULL,
    status TEXT NOT NULL,
    version TEXT,

    -- Git commit of the repository holding the source, when there is one
    revision TEXT NOT NULL DEFAULT '',

    -- Compiled graph as JSON; NULL for failed compilations
    graph TEXT,

    -- Graph shape
    nodes INTEGER NOT NULL DEFAULT 0,
    static_nodes INTEGER NOT NULL DEFAULT 0,
    computed_nodes INTEGER NOT NULL DEFAULT 0,
    depth INTEGER NOT NULL DEFAULT 0,

    -- JSON array of diagnostics for failed compilations
    diagnostics TEXT,

    duration_ms INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artifacts_path_created ON artifacts(path, created_at);
CREATE INDEX IF NOT EXISTS idx_artifacts_created ON artifacts(created_at);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, ?)
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
