package track

import (
	"fmt"
	"strings"
)

// Mode selects which positional signal governs the viewport center.
type Mode int

const (
	ModeAuto Mode = iota
	ModeCaret
	ModeMouse
	ModeFocus
	ModeManual
)

// String returns the config/UI name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "Auto"
	case ModeCaret:
		return "Caret"
	case ModeMouse:
		return "Mouse"
	case ModeFocus:
		return "Focus"
	case ModeManual:
		return "Manual"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Next returns the following mode in the fixed cycle
// Auto -> Caret -> Mouse -> Focus -> Manual -> Auto.
func (m Mode) Next() Mode {
	switch m {
	case ModeAuto:
		return ModeCaret
	case ModeCaret:
		return ModeMouse
	case ModeMouse:
		return ModeFocus
	case ModeFocus:
		return ModeManual
	default:
		return ModeAuto
	}
}

// ParseMode converts a config string to a Mode. Unknown values fall
// back to Auto, matching how stored configs from older versions load.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "caret":
		return ModeCaret
	case "mouse":
		return ModeMouse
	case "focus":
		return ModeFocus
	case "manual":
		return ModeManual
	default:
		return ModeAuto
	}
}
