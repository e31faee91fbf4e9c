package history

// Stack is the append-only undo history of committed moves.
type Stack struct {
	records []MoveRecord
}

// Push appends a committed move.
func (s *Stack) Push(m MoveRecord) {
	s.records = append(s.records, m)
}

// Pop removes and returns the most recent move.
func (s *Stack) Pop() (MoveRecord, bool) {
	if len(s.records) == 0 {
		return MoveRecord{}, false
	}
	last := s.records[len(s.records)-1]
	s.records = s.records[:len(s.records)-1]
	return last, true
}

// Peek returns the most recent move without removing it.
func (s *Stack) Peek() (MoveRecord, bool) {
	if len(s.records) == 0 {
		return MoveRecord{}, false
	}
	return s.records[len(s.records)-1], true
}

// Len returns the number of recorded moves.
func (s *Stack) Len() int {
	return len(s.records)
}

// Clear empties the history.
func (s *Stack) Clear() {
	s.records = nil
}

// Records returns a copy of the history, oldest first.
func (s *Stack) Records() []MoveRecord {
	return append([]MoveRecord(nil), s.records...)
}
