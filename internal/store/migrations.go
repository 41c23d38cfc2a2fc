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
		Name:    "create local storage",
		SQL: `
			CREATE TABLE local_storage (
				namespace   TEXT NOT NULL DEFAULT '',
				key         TEXT NOT NULL,
				value       TEXT NOT NULL,
				updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
				PRIMARY KEY (namespace, key)
			);
		`,
	},
}
