package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT,
	rev        INTEGER NOT NULL,
	writer     TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS kv_rev (
	id  INTEGER PRIMARY KEY CHECK(id = 1),
	rev INTEGER NOT NULL
);

INSERT INTO kv_rev (id, rev) VALUES (1, 0);

CREATE INDEX IF NOT EXISTS idx_kv_rev ON kv(rev);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
