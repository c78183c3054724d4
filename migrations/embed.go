package migrations

import "embed"

// FS holds the schema migrations for every supported SQL backend, one directory per driver.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
