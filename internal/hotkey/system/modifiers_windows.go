//go:build windows

package system

import xhotkey "golang.design/x/hotkey"

var modifierMap = map[string]xhotkey.Modifier{
	"ctrl":  xhotkey.ModCtrl,
	"shift": xhotkey.ModShift,
	"alt":   xhotkey.ModAlt,
	"super": xhotkey.ModWin,
}
