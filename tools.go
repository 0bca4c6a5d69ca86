//go:build tools
// +build tools

// Package tools pins the code generators invoked through go generate
// (mockgen for the contract mocks) as module dependencies.
package taskhub

import (
	_ "go.uber.org/mock/mockgen"
)
