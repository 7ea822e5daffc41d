package session

import "github.com/leapstack-labs/suiteql/internal/cli/output"

// DefaultStep is the page step used when no limit is set.
const DefaultStep = 10

// State is the mutable part of a session: output mode, paging cursors and
// the most recently attempted query. It performs no I/O.
type State struct {
	mode      output.Mode
	limit     *int
	offset    *int
	lastQuery *string
}

// NewState returns a state in table mode with nothing set.
func NewState() *State {
	return &State{mode: output.ModeTable}
}

// Mode returns the current output mode.
func (s *State) Mode() output.Mode { return s.mode }

// SetMode sets the output mode.
func (s *State) SetMode(m output.Mode) { s.mode = m }

// ToggleMode switches between table and JSON output and returns the new mode.
func (s *State) ToggleMode() output.Mode {
	if s.mode == output.ModeJSON {
		s.mode = output.ModeTable
	} else {
		s.mode = output.ModeJSON
	}
	return s.mode
}

// Limit returns the default limit and whether one is set.
func (s *State) Limit() (int, bool) {
	if s.limit == nil {
		return 0, false
	}
	return *s.limit, true
}

// SetLimit sets the default limit.
func (s *State) SetLimit(n int) {
	if n < 0 {
		n = 0
	}
	s.limit = &n
}

// ClearLimit unsets the default limit.
func (s *State) ClearLimit() { s.limit = nil }

// Offset returns the default offset and whether one is set.
func (s *State) Offset() (int, bool) {
	if s.offset == nil {
		return 0, false
	}
	return *s.offset, true
}

// SetOffset sets the default offset. Negative values clamp to zero.
func (s *State) SetOffset(n int) {
	if n < 0 {
		n = 0
	}
	s.offset = &n
}

// ClearOffset unsets the default offset.
func (s *State) ClearOffset() { s.offset = nil }

// LastQuery returns the most recently attempted query, if any.
func (s *State) LastQuery() (string, bool) {
	if s.lastQuery == nil {
		return "", false
	}
	return *s.lastQuery, true
}

// SetLastQuery records q as the most recently attempted query.
func (s *State) SetLastQuery(q string) { s.lastQuery = &q }

// Step is the distance moved by NextPage and PrevPage.
func (s *State) Step() int {
	if n, ok := s.Limit(); ok && n > 0 {
		return n
	}
	return DefaultStep
}

// NextPage advances the offset by one step.
func (s *State) NextPage() int {
	off, _ := s.Offset()
	s.SetOffset(off + s.Step())
	return *s.offset
}

// PrevPage moves the offset back by one step, stopping at zero.
func (s *State) PrevPage() int {
	off, _ := s.Offset()
	s.SetOffset(off - s.Step())
	return *s.offset
}

// Paging returns copies of the limit and offset to send with a query. A nil
// pointer means the parameter is omitted.
func (s *State) Paging() (limit, offset *int) {
	return copyInt(s.limit), copyInt(s.offset)
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
