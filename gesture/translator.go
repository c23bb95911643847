// Package gesture turns a stream of pointer down/move/up samples into tap,
// swipe, long-press and scroll intents.
package gesture

import (
	"errors"
	"fmt"
	"time"

	"github.com/mobile-next/droidinput/geometry"
)

const (
	// TapThreshold is the longest path, in device pixels, still classified as a tap.
	TapThreshold = 2.0

	// SwipeDuration is how long a drag gesture takes on the device.
	SwipeDuration = 100 * time.Millisecond
	// LongPressDuration is how long the finger stays down for a long press.
	LongPressDuration = 2000 * time.Millisecond
	// ScrollDuration is how long one wheel-step scroll swipe takes.
	ScrollDuration = 100 * time.Millisecond
)

var (
	ErrGestureInProgress = errors.New("gesture already in progress")
	ErrNoGesture         = errors.New("no gesture in progress")
)

// Kind identifies what an Intent asks the platform to synthesize.
type Kind int

const (
	KindTap Kind = iota
	KindSwipe
	KindScroll
)

func (k Kind) String() string {
	switch k {
	case KindTap:
		return "tap"
	case KindSwipe:
		return "swipe"
	case KindScroll:
		return "scroll"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Intent is a classified gesture ready to be dispatched.
// For taps From and To are the same point and Duration is zero.
type Intent struct {
	Kind     Kind           `json:"kind"`
	From     geometry.Point `json:"from"`
	To       geometry.Point `json:"to"`
	Duration time.Duration  `json:"duration"`
	DeltaY   float64        `json:"deltaY,omitempty"`
}

func (i Intent) String() string {
	switch i.Kind {
	case KindTap:
		return fmt.Sprintf("tap(%g,%g)", i.To.X, i.To.Y)
	default:
		return fmt.Sprintf("%s(%g,%g -> %g,%g, %s)", i.Kind, i.From.X, i.From.Y, i.To.X, i.To.Y, i.Duration)
	}
}

// Translator accumulates one gesture at a time. It is not safe for
// concurrent use; callers deliver events from a single goroutine.
type Translator struct {
	path      *geometry.Path
	startedAt time.Time
	now       func() time.Time
}

// NewTranslator returns a translator with no gesture open.
func NewTranslator() *Translator {
	return &Translator{now: time.Now}
}

// SetNowFunc overrides the clock used to stamp gesture starts.
func (t *Translator) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		t.now = fn
	}
}

// InProgress reports whether a gesture is open.
func (t *Translator) InProgress() bool {
	return t.path != nil
}

// StartedAt returns when the open gesture began, or the zero time.
func (t *Translator) StartedAt() time.Time {
	if t.path == nil {
		return time.Time{}
	}
	return t.startedAt
}

// Down opens a new gesture at (x, y).
func (t *Translator) Down(x, y float64) error {
	if t.path != nil {
		return ErrGestureInProgress
	}

	t.path = geometry.NewPath(geometry.Point{X: x, Y: y})
	t.startedAt = t.now()
	return nil
}

// Move extends the open gesture.
func (t *Translator) Move(x, y float64) error {
	if t.path == nil {
		return ErrNoGesture
	}

	t.path.LineTo(geometry.Point{X: x, Y: y})
	return nil
}

// Up closes the open gesture and classifies it.
func (t *Translator) Up(x, y float64) (Intent, error) {
	if t.path == nil {
		return Intent{}, ErrNoGesture
	}

	t.path.LineTo(geometry.Point{X: x, Y: y})
	intent := Classify(t.path)

	t.path = nil
	t.startedAt = time.Time{}
	return intent, nil
}

// LongPress returns an in-place swipe held long enough to act as a long
// press. It does not touch any open gesture.
func (t *Translator) LongPress(x, y float64) Intent {
	pt := geometry.Point{X: x, Y: y}
	return Intent{Kind: KindSwipe, From: pt, To: pt, Duration: LongPressDuration}
}

// Scroll returns a vertical drag from (x, y) that moves content by deltaY.
// Callers must not dispatch a new scroll while the previous one is still
// being performed.
func (t *Translator) Scroll(x, y, deltaY float64) Intent {
	return Intent{
		Kind:     KindScroll,
		From:     geometry.Point{X: x, Y: y},
		To:       geometry.Point{X: x, Y: y - deltaY},
		Duration: ScrollDuration,
		DeltaY:   deltaY,
	}
}

// Classify turns a finished path into a tap or a swipe.
func Classify(path *geometry.Path) Intent {
	length := path.Length()
	if length <= TapThreshold {
		end := path.Last()
		return Intent{Kind: KindTap, From: end, To: end}
	}

	return Intent{
		Kind:     KindSwipe,
		From:     path.PointAt(0),
		To:       path.PointAt(length),
		Duration: SwipeDuration,
	}
}
