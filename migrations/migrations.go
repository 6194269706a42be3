// Package migrations carries the versioned schema, embedded so the binary
// needs no migration directory at runtime.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
