//go:build !cgo_sqlite

package resolver

import _ "modernc.org/sqlite"

const driverName = "sqlite"
