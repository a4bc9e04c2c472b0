package engine

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// Winner reports the declared winner, if any.
func (s State) Winner() (Owner, bool) {
	m, ok := s.Stage.(MainStage)
	if !ok || m.Winner.IsNone() {
		return NoOwner, false
	}
	return m.Winner, true
}

// RoundNumber is the number of the current or last round, 0 before main.
func (s State) RoundNumber() int {
	if m, ok := s.Stage.(MainStage); ok {
		return m.Round.Number
	}
	return 0
}

// OwnedTotal is the number of owned cells; it always equals the sum of Counts.
func (s State) OwnedTotal() int { return s.Grid.claimedCount() }
