// Package testutils provides test infrastructure for spectag integration tests.
package testutils

import (
	"path/filepath"
	"runtime"

	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/agar/pkg/agar"
)

// Binary names under bin/.
const (
	Spectag = "spectag"
	Report  = "spectag-report"
)

// Setup creates a test case configured to run the spectag binary.
func Setup() *test.Case {
	return SetupBinary(Spectag)
}

// SetupBinary creates a test case configured to run the named binary from the project bin/ directory.
func SetupBinary(name string) *test.Case {
	return agar.Setup(BinaryPath(name))
}

// BinaryPath resolves a binary built into the project bin/ directory.
func BinaryPath(name string) string {
	_, thisFile, _, _ := runtime.Caller(0) //nolint:dogsled // runtime.Caller returns 4 values, only file is needed
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))

	return filepath.Join(projectRoot, "bin", name)
}
