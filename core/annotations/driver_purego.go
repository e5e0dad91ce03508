//go:build !cgo_sqlite

// Pure Go SQLite driver via modernc.org/sqlite. Default build mode; no CGO
// toolchain required.
package annotations

import (
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"
