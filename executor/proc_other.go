//go:build !unix

package executor

import (
	"os/exec"
)

// configureProcessGroup is a no-op where process groups work differently.
// WaitDelay still bounds the wait after cancellation.
func configureProcessGroup(cmd *exec.Cmd) {
}
