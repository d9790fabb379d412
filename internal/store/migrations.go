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

CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS cookies (
	id         TEXT PRIMARY KEY,
	origin     TEXT NOT NULL,
	name       TEXT NOT NULL,
	value      TEXT NOT NULL,
	path       TEXT NOT NULL DEFAULT '/',
	domain     TEXT NOT NULL DEFAULT '',
	expires    DATETIME NOT NULL,
	secure     INTEGER NOT NULL DEFAULT 0 CHECK(secure IN (0, 1)),
	http_only  INTEGER NOT NULL DEFAULT 0 CHECK(http_only IN (0, 1)),
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(origin, name, path)
);

CREATE INDEX IF NOT EXISTS idx_cookies_origin ON cookies(origin);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
