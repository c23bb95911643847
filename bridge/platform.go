package bridge

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mobile-next/droidinput/executor"
	"github.com/mobile-next/droidinput/gesture"
)

// GlobalAction is a system navigation action.
type GlobalAction int

const (
	GlobalActionHome GlobalAction = iota
	GlobalActionBack
	GlobalActionRecents
)

func (a GlobalAction) String() string {
	switch a {
	case GlobalActionHome:
		return "home"
	case GlobalActionBack:
		return "back"
	case GlobalActionRecents:
		return "recents"
	default:
		return fmt.Sprintf("global-action(%d)", int(a))
	}
}

// Platform is the host the bridge injects into.
type Platform interface {
	PerformGlobalAction(ctx context.Context, action GlobalAction) error
	SetClipboardText(ctx context.Context, text string) error
	DisplayHeight(ctx context.Context) (int, error)
}

// GestureDispatcher synthesizes classified gestures.
type GestureDispatcher interface {
	Dispatch(ctx context.Context, intent gesture.Intent) error
}

// CommandDispatcher synthesizes gestures with the `input` shell tool,
// through the single-flight executor. Overlapping gestures fail with
// executor.ErrBusy.
type CommandDispatcher struct {
	Executor *executor.Executor
}

// Argv builds the `input` invocation for an intent. Every coordinate is its
// own argument so nothing is interpolated into a shell string here.
func Argv(intent gesture.Intent) []string {
	switch intent.Kind {
	case gesture.KindTap:
		return []string{"input", "tap", formatCoord(intent.To.X), formatCoord(intent.To.Y)}
	default:
		return []string{
			"input", "swipe",
			formatCoord(intent.From.X), formatCoord(intent.From.Y),
			formatCoord(intent.To.X), formatCoord(intent.To.Y),
			strconv.FormatInt(intent.Duration.Milliseconds(), 10),
		}
	}
}

func (d *CommandDispatcher) Dispatch(ctx context.Context, intent gesture.Intent) error {
	res, err := d.Executor.TryRun(ctx, Argv(intent)...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%s: input exited with status %d", intent.Kind, res.ExitCode)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
