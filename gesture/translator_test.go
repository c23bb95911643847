package gesture

import (
	"testing"
	"time"

	"github.com/mobile-next/droidinput/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslator_ShortPathIsTap(t *testing.T) {
	tr := NewTranslator()

	require.NoError(t, tr.Down(10, 10))
	intent, err := tr.Up(10, 11)
	require.NoError(t, err)

	assert.Equal(t, KindTap, intent.Kind)
	assert.Equal(t, geometry.Point{X: 10, Y: 11}, intent.To)
	assert.False(t, tr.InProgress())
}

func TestTranslator_LongPathIsSwipe(t *testing.T) {
	tr := NewTranslator()

	require.NoError(t, tr.Down(0, 0))
	require.NoError(t, tr.Move(50, 0))
	intent, err := tr.Up(100, 0)
	require.NoError(t, err)

	assert.Equal(t, KindSwipe, intent.Kind)
	assert.Equal(t, geometry.Point{X: 0, Y: 0}, intent.From)
	assert.Equal(t, geometry.Point{X: 100, Y: 0}, intent.To)
	assert.Equal(t, 100*time.Millisecond, intent.Duration)
}

func TestTranslator_Threshold(t *testing.T) {
	tests := []struct {
		name  string
		moves [][2]float64
		up    [2]float64
		want  Kind
	}{
		{"no movement", nil, [2]float64{5, 5}, KindTap},
		{"exactly threshold", nil, [2]float64{7, 5}, KindTap},
		{"just over threshold", nil, [2]float64{7.01, 5}, KindSwipe},
		// wandering path returns to start but is long overall
		{"round trip", [][2]float64{{10, 5}}, [2]float64{5, 5}, KindSwipe},
		{"jitter under threshold", [][2]float64{{5.5, 5}, {5, 5}}, [2]float64{5.5, 5}, KindTap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTranslator()
			require.NoError(t, tr.Down(5, 5))
			for _, m := range tt.moves {
				require.NoError(t, tr.Move(m[0], m[1]))
			}
			intent, err := tr.Up(tt.up[0], tt.up[1])
			require.NoError(t, err)
			assert.Equal(t, tt.want, intent.Kind)
		})
	}
}

func TestTranslator_RoundTripSwipeEndsAtUpPoint(t *testing.T) {
	tr := NewTranslator()
	require.NoError(t, tr.Down(0, 0))
	require.NoError(t, tr.Move(30, 0))
	intent, err := tr.Up(0, 0)
	require.NoError(t, err)

	assert.Equal(t, KindSwipe, intent.Kind)
	assert.Equal(t, geometry.Point{X: 0, Y: 0}, intent.From)
	assert.Equal(t, geometry.Point{X: 0, Y: 0}, intent.To)
}

func TestTranslator_MoveWithoutDown(t *testing.T) {
	tr := NewTranslator()

	err := tr.Move(1, 1)
	assert.ErrorIs(t, err, ErrNoGesture)
	assert.False(t, tr.InProgress())

	_, err = tr.Up(1, 1)
	assert.ErrorIs(t, err, ErrNoGesture)
}

func TestTranslator_DoubleDown(t *testing.T) {
	tr := NewTranslator()
	require.NoError(t, tr.Down(1, 1))

	err := tr.Down(50, 50)
	assert.ErrorIs(t, err, ErrGestureInProgress)

	// original gesture is untouched
	intent, err := tr.Up(1, 1)
	require.NoError(t, err)
	assert.Equal(t, KindTap, intent.Kind)
}

func TestTranslator_ReadyAfterUp(t *testing.T) {
	tr := NewTranslator()
	require.NoError(t, tr.Down(0, 0))
	_, err := tr.Up(0, 0)
	require.NoError(t, err)

	require.NoError(t, tr.Down(200, 200))
	intent, err := tr.Up(200, 200)
	require.NoError(t, err)
	assert.Equal(t, geometry.Point{X: 200, Y: 200}, intent.To)
}

func TestTranslator_StartedAt(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTranslator()
	tr.SetNowFunc(func() time.Time { return fixed })

	assert.True(t, tr.StartedAt().IsZero())
	require.NoError(t, tr.Down(0, 0))
	assert.Equal(t, fixed, tr.StartedAt())

	_, err := tr.Up(0, 0)
	require.NoError(t, err)
	assert.True(t, tr.StartedAt().IsZero())
}

func TestTranslator_LongPress(t *testing.T) {
	tr := NewTranslator()
	require.NoError(t, tr.Down(0, 0))

	intent := tr.LongPress(30, 40)
	assert.Equal(t, KindSwipe, intent.Kind)
	assert.Equal(t, geometry.Point{X: 30, Y: 40}, intent.From)
	assert.Equal(t, intent.From, intent.To)
	assert.Equal(t, 2000*time.Millisecond, intent.Duration)

	// open gesture survives
	assert.True(t, tr.InProgress())
}

func TestTranslator_Scroll(t *testing.T) {
	tr := NewTranslator()

	up := tr.Scroll(100, 500, -400)
	assert.Equal(t, KindScroll, up.Kind)
	assert.Equal(t, geometry.Point{X: 100, Y: 500}, up.From)
	assert.Equal(t, geometry.Point{X: 100, Y: 900}, up.To)
	assert.Equal(t, -400.0, up.DeltaY)

	down := tr.Scroll(100, 500, 400)
	assert.Equal(t, geometry.Point{X: 100, Y: 100}, down.To)
}

func TestIntent_String(t *testing.T) {
	assert.Equal(t, "tap(1,2)", Intent{Kind: KindTap, To: geometry.Point{X: 1, Y: 2}}.String())
	assert.Equal(t, "swipe(0,0 -> 10,0, 100ms)", Intent{
		Kind:     KindSwipe,
		To:       geometry.Point{X: 10},
		Duration: SwipeDuration,
	}.String())
}
