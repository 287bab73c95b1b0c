package viewport

// Selection holds the persistent selection and the transient hover target.
// The two are independent: hovering never changes Selected or Token.
type Selection struct {
	Selected string // "" when nothing is selected
	Hovered  string // "" when the pointer is over no node
	Token    uint64 // incremented on every Select, including reselection
}

// Select makes id the selected node and bumps the token so observers can
// replay entry effects even when the same node is chosen again.
func (s *Selection) Select(id string) {
	s.Selected = id
	s.Token++
}

// Hover sets the hovered node, or clears it for "". It reports whether the
// value changed.
func (s *Selection) Hover(id string) bool {
	if s.Hovered == id {
		return false
	}
	s.Hovered = id
	return true
}

// Clear drops the selection without bumping the token. It reports whether
// anything was selected.
func (s *Selection) Clear() bool {
	if s.Selected == "" {
		return false
	}
	s.Selected = ""
	return true
}
