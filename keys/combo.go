// Package keys tracks modifier state from remote key events and recognizes
// key combinations.
package keys

import (
	"fmt"
	"strconv"
	"strings"
)

// X11 keysyms as delivered by RFB clients.
const (
	KeysymEscape     uint32 = 0xFF1B
	KeysymHome       uint32 = 0xFF50
	KeysymModeSwitch uint32 = 0xFF7E // macOS clients send Alt as Mode_switch
	KeysymShiftL     uint32 = 0xFFE1
	KeysymControlL   uint32 = 0xFFE3
	KeysymAltL       uint32 = 0xFFE9
	KeysymDelete     uint32 = 0xFFFF
)

// Key is one of the tracked keys.
type Key int

const (
	Ctrl Key = iota
	Alt
	Shift
	Del
	Esc

	numKeys
)

var keyNames = [numKeys]string{"Ctrl", "Alt", "Shift", "Del", "Esc"}

func (k Key) String() string {
	if k < 0 || k >= numKeys {
		return fmt.Sprintf("key(%d)", int(k))
	}
	return keyNames[k]
}

var trackedKeysyms = map[uint32]Key{
	KeysymControlL:   Ctrl,
	KeysymAltL:       Alt,
	KeysymModeSwitch: Alt,
	KeysymShiftL:     Shift,
	KeysymDelete:     Del,
	KeysymEscape:     Esc,
}

// Action is what a recognized key or combo asks the host to do.
type Action int

const (
	ActionToggleOrientationWorkaround Action = iota
	ActionRecents
	ActionHome
	ActionBack
)

func (a Action) String() string {
	switch a {
	case ActionToggleOrientationWorkaround:
		return "toggle-orientation-workaround"
	case ActionRecents:
		return "recents"
	case ActionHome:
		return "home"
	case ActionBack:
		return "back"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Combo fires Action on the transition into all Keys being held.
type Combo struct {
	Name   string
	Keys   []Key
	Action Action
}

// DefaultCombos are Ctrl-Alt-Del and Ctrl-Shift-Esc.
var DefaultCombos = []Combo{
	{Name: "Ctrl-Alt-Del", Keys: []Key{Ctrl, Alt, Del}, Action: ActionToggleOrientationWorkaround},
	{Name: "Ctrl-Shift-Esc", Keys: []Key{Ctrl, Shift, Esc}, Action: ActionRecents},
}

// Tracker holds per-key state. It is not safe for concurrent use.
type Tracker struct {
	down   [numKeys]bool
	combos []Combo
}

// NewTracker returns a tracker for the given combos, or DefaultCombos when
// none are given.
func NewTracker(combos ...Combo) *Tracker {
	if len(combos) == 0 {
		combos = DefaultCombos
	}
	return &Tracker{combos: combos}
}

// IsDown reports the last known state of k.
func (t *Tracker) IsDown(k Key) bool {
	if k < 0 || k >= numKeys {
		return false
	}
	return t.down[k]
}

// OnKey records one key event and returns the actions it triggers, combos
// first. A combo fires only on the event that completes it.
func (t *Tracker) OnKey(keysym uint32, down bool) []Action {
	var actions []Action

	before := t.evaluate()
	if k, ok := trackedKeysyms[keysym]; ok {
		t.down[k] = down
	}
	after := t.evaluate()

	for i, c := range t.combos {
		if after[i] && !before[i] {
			actions = append(actions, c.Action)
		}
	}

	if down {
		switch keysym {
		case KeysymHome:
			actions = append(actions, ActionHome)
		case KeysymEscape:
			actions = append(actions, ActionBack)
		}
	}

	return actions
}

// ComboName returns the name of the combo bound to a, if any.
func (t *Tracker) ComboName(a Action) string {
	for _, c := range t.combos {
		if c.Action == a {
			return c.Name
		}
	}
	return a.String()
}

func (t *Tracker) evaluate() []bool {
	state := make([]bool, len(t.combos))
	for i, c := range t.combos {
		held := len(c.Keys) > 0
		for _, k := range c.Keys {
			if !t.IsDown(k) {
				held = false
				break
			}
		}
		state[i] = held
	}
	return state
}

var keysymNames = map[string]uint32{
	"esc":        KeysymEscape,
	"escape":     KeysymEscape,
	"home":       KeysymHome,
	"modeswitch": KeysymModeSwitch,
	"shift":      KeysymShiftL,
	"ctrl":       KeysymControlL,
	"control":    KeysymControlL,
	"alt":        KeysymAltL,
	"del":        KeysymDelete,
	"delete":     KeysymDelete,
}

// ParseKeysym accepts a key name such as "ctrl" or a numeric keysym such as
// "0xffe3".
func ParseKeysym(s string) (uint32, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if keysym, ok := keysymNames[name]; ok {
		return keysym, nil
	}

	v, err := strconv.ParseUint(name, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown key %q", s)
	}
	return uint32(v), nil
}
