package executor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"al.essio.dev/pkg/shellescape"
)

// cancelWaitDelay bounds how long Run waits for output after the command was
// killed. Descendants that escaped the process group kill (su drops into a
// root-owned shell) may keep the pipe open.
const cancelWaitDelay = 500 * time.Millisecond

// ExecRunner runs commands as local processes. When Prefix is set, argv is
// shell-quoted into a single string and appended to it, which is how both
// `su -c` and `adb shell` expect their command.
type ExecRunner struct {
	Prefix []string
}

// SuRunner runs commands through su on the device itself.
func SuRunner(suBinary string) *ExecRunner {
	if suBinary == "" {
		suBinary = "su"
	}
	return &ExecRunner{Prefix: []string{suBinary, "-c"}}
}

// AdbRunner runs commands on a device from the host over adb.
func AdbRunner(serial string) *ExecRunner {
	prefix := []string{"adb"}
	if serial != "" {
		prefix = append(prefix, "-s", serial)
	}
	return &ExecRunner{Prefix: append(prefix, "shell")}
}

// CommandLine returns the full argv that will be executed.
func (r *ExecRunner) CommandLine(argv []string) []string {
	if len(r.Prefix) == 0 {
		return argv
	}

	full := make([]string, 0, len(r.Prefix)+1)
	full = append(full, r.Prefix...)
	return append(full, shellescape.QuoteCommand(argv))
}

func (r *ExecRunner) Run(ctx context.Context, argv []string) (int, []byte, error) {
	full := r.CommandLine(argv)
	cmd := exec.CommandContext(ctx, full[0], full[1:]...)
	configureProcessGroup(cmd)
	cmd.WaitDelay = cancelWaitDelay

	output, err := cmd.CombinedOutput()
	if errors.Is(err, exec.ErrWaitDelay) && ctx.Err() == nil {
		// exited cleanly but left a background process holding the pipe
		return cmd.ProcessState.ExitCode(), output, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 && ctx.Err() == nil {
			return exitErr.ExitCode(), output, nil
		}
		if ctx.Err() != nil {
			return ExitFailure, output, fmt.Errorf("%w: %v", ctx.Err(), err)
		}
		return ExitFailure, output, err
	}

	return cmd.ProcessState.ExitCode(), output, nil
}
