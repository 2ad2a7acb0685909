package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create tool revisions",
		SQL: `
			CREATE TABLE tool_revisions (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				op          TEXT NOT NULL CHECK (op IN ('create', 'update', 'delete')),
				code        TEXT NOT NULL DEFAULT '',
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_revisions_name ON tool_revisions (name, created_at DESC);
		`,
	},
}
