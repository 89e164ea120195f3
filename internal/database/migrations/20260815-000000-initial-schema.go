package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260815-000000",
		Description: "initial targets schema",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS targets (
				id TEXT PRIMARY KEY,
				business_name TEXT NOT NULL,
				website_url TEXT NOT NULL,
				keywords TEXT NOT NULL DEFAULT '[]',
				prompts TEXT NOT NULL DEFAULT '[]',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_targets_created_at ON targets(created_at)`,
		},
	})
}
