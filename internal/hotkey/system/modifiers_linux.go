//go:build linux

package system

import xhotkey "golang.design/x/hotkey"

// X11 maps Alt to Mod1 and Super to Mod4.
var modifierMap = map[string]xhotkey.Modifier{
	"ctrl":  xhotkey.ModCtrl,
	"shift": xhotkey.ModShift,
	"alt":   xhotkey.Mod1,
	"super": xhotkey.Mod4,
}
