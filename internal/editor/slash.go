package editor

import "unicode"

// SlashKey opens the command menu.
const SlashKey = "/"

// SlashTrigger reports whether a slash typed at offset (in runes) within
// blockText should open the command menu: at the start of the block, in a
// blank block, or right after whitespace. Mid-word slashes are plain text.
func SlashTrigger(blockText string, offset int) bool {
	runes := []rune(blockText)
	if offset <= 0 {
		return true
	}
	if offset > len(runes) {
		offset = len(runes)
	}
	blank := true
	for _, r := range runes {
		if !unicode.IsSpace(r) {
			blank = false
			break
		}
	}
	if blank {
		return true
	}
	return unicode.IsSpace(runes[offset-1])
}

// OpenAt places the menu: Pos is just past the slash, SlashPos is the slash
// itself, both as document positions.
type OpenAt struct {
	Pos      int
	SlashPos int
}

// KeyEvent is a keystroke about to be applied to the document.
type KeyEvent struct {
	Key       string
	BlockText string
	// Offset of the cursor within the block, in runes.
	Offset int
	// DocPos is the cursor position in the whole document.
	DocPos int
}

// SlashMenu is the command menu state: closed, or open at a position.
// The zero value is closed.
type SlashMenu struct {
	open bool
	at   OpenAt
}

// KeyDown inspects a keystroke. When it should open the menu, it returns
// the decision for the caller to Apply once the slash has been inserted.
// The keystroke itself is never consumed.
func (m *SlashMenu) KeyDown(ev KeyEvent) (OpenAt, bool) {
	if ev.Key != SlashKey || !SlashTrigger(ev.BlockText, ev.Offset) {
		return OpenAt{}, false
	}
	return OpenAt{Pos: ev.DocPos + 1, SlashPos: ev.DocPos}, true
}

// Apply opens the menu at a pending position.
func (m *SlashMenu) Apply(at OpenAt) {
	m.open = true
	m.at = at
}

// Close resets the menu.
func (m *SlashMenu) Close() {
	*m = SlashMenu{}
}

// State returns where the menu is open, if it is.
func (m *SlashMenu) State() (OpenAt, bool) {
	return m.at, m.open
}
