package runlist

// Session tracks which run a front end is currently editing. It is advisory
// state owned by the caller; the Manager never reads it.
type Session struct {
	current string
}

// SetCurrent records tag as the run being edited and returns it.
func (s *Session) SetCurrent(tag string) string {
	s.current = tag
	return s.current
}

// Current returns the tag of the run being edited, or "".
func (s *Session) Current() string {
	return s.current
}

// Clear forgets the current run.
func (s *Session) Clear() {
	s.current = ""
}
