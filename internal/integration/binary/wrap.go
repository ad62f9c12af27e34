// Package binary locates the external tools the fallback decoder shells out to.
package binary

import (
	"fmt"
	"os/exec"

	"github.com/farcloser/primordium/fault"
)

// Require returns the path of binName in the system PATH.
func Require(binName string) (string, error) {
	path, err := exec.LookPath(binName)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", fault.ErrMissingRequirements, binName, err)
	}

	return path, nil
}
