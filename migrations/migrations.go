// AngelaMos | 2026
// migrations.go

package migrations

import "embed"

// FS holds the schema migrations applied by core.Database.Migrate.
//
//go:embed *.sql
var FS embed.FS
