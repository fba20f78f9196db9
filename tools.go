//go:build tools

// Package tools tracks code generators invoked through go generate.
package tools

import (
	_ "go.uber.org/mock/mockgen"
)
