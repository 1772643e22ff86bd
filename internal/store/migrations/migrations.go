package migrations

import "embed"

// FS holds the schema owned by this server inside the bridge's messages
// database. Bridge tables are never created or altered here.
//
//go:embed *.sql
var FS embed.FS
