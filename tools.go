//go:build tools

// Package tools pins Go-based tools invoked via `go generate` (mockgen)
// so they are tracked in go.mod.
package tools

import (
	_ "go.uber.org/mock/mockgen"
)
