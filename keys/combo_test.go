package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_CtrlAltDelFiresOnce(t *testing.T) {
	tr := NewTracker()

	assert.Empty(t, tr.OnKey(KeysymControlL, true))
	assert.Empty(t, tr.OnKey(KeysymAltL, true))
	assert.Equal(t, []Action{ActionToggleOrientationWorkaround}, tr.OnKey(KeysymDelete, true))

	// held steady, repeated downs do not re-fire
	assert.Empty(t, tr.OnKey(KeysymDelete, true))
	assert.Empty(t, tr.OnKey(KeysymControlL, true))

	// release and re-press fires again
	assert.Empty(t, tr.OnKey(KeysymDelete, false))
	assert.Equal(t, []Action{ActionToggleOrientationWorkaround}, tr.OnKey(KeysymDelete, true))
}

func TestTracker_ComboOrderIndependent(t *testing.T) {
	tr := NewTracker()

	assert.Empty(t, tr.OnKey(KeysymDelete, true))
	assert.Empty(t, tr.OnKey(KeysymAltL, true))
	assert.Equal(t, []Action{ActionToggleOrientationWorkaround}, tr.OnKey(KeysymControlL, true))
}

func TestTracker_MacAltKeysym(t *testing.T) {
	tr := NewTracker()

	tr.OnKey(KeysymControlL, true)
	tr.OnKey(KeysymModeSwitch, true)
	assert.True(t, tr.IsDown(Alt))
	assert.Equal(t, []Action{ActionToggleOrientationWorkaround}, tr.OnKey(KeysymDelete, true))
}

func TestTracker_CtrlShiftEsc(t *testing.T) {
	tr := NewTracker()

	tr.OnKey(KeysymControlL, true)
	tr.OnKey(KeysymShiftL, true)

	// Esc both completes the combo and is a back press
	assert.Equal(t, []Action{ActionRecents, ActionBack}, tr.OnKey(KeysymEscape, true))
	assert.Empty(t, tr.OnKey(KeysymEscape, false))
}

func TestTracker_HomeAndEscape(t *testing.T) {
	tests := []struct {
		name   string
		keysym uint32
		down   bool
		want   []Action
	}{
		{"home down", KeysymHome, true, []Action{ActionHome}},
		{"home up", KeysymHome, false, nil},
		{"escape down", KeysymEscape, true, []Action{ActionBack}},
		{"escape up", KeysymEscape, false, nil},
		{"untracked key", 0x61, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			assert.Equal(t, tt.want, tr.OnKey(tt.keysym, tt.down))
		})
	}
}

func TestTracker_KeyState(t *testing.T) {
	tr := NewTracker()

	tr.OnKey(KeysymShiftL, true)
	assert.True(t, tr.IsDown(Shift))
	assert.False(t, tr.IsDown(Ctrl))

	tr.OnKey(KeysymShiftL, false)
	assert.False(t, tr.IsDown(Shift))

	// unknown keys never touch tracked state
	tr.OnKey(0x41, true)
	for k := Ctrl; k < numKeys; k++ {
		assert.False(t, tr.IsDown(k), k.String())
	}
}

func TestTracker_CustomCombo(t *testing.T) {
	tr := NewTracker(Combo{Name: "Shift-Esc", Keys: []Key{Shift, Esc}, Action: ActionHome})

	tr.OnKey(KeysymShiftL, true)
	assert.Equal(t, []Action{ActionHome, ActionBack}, tr.OnKey(KeysymEscape, true))
	assert.Equal(t, "Shift-Esc", tr.ComboName(ActionHome))
	assert.Equal(t, "back", tr.ComboName(ActionBack))
}

func TestParseKeysym(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"ctrl", KeysymControlL, false},
		{"Alt", KeysymAltL, false},
		{" DELETE ", KeysymDelete, false},
		{"esc", KeysymEscape, false},
		{"home", KeysymHome, false},
		{"0xffe1", KeysymShiftL, false},
		{"65307", KeysymEscape, false},
		{"hyper", 0, true},
		{"0x1ffffffff", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKeysym(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
