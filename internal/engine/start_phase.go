package engine

func (s *State) pickStart(id string, idx int) ([]Event, error) {
	st, ok := s.Stage.(StartStage)
	if !ok {
		return nil, ErrWrongPhase
	}
	if s.CurrentTurn() != Human(id) {
		return nil, ErrNotYourTurn
	}
	if !s.Grid.InBounds(idx) {
		return nil, ErrOutOfBounds
	}
	if !s.Grid.Cells[idx].Owner.IsNone() {
		return nil, ErrCellTaken
	}

	s.setOwner(idx, Human(id))
	events := []Event{{Type: EvtStartSquarePicked, Actor: Human(id), Index: idx}}
	return append(events, s.advanceStart(StartStage{TurnIndex: st.TurnIndex + 1})...), nil
}

// advanceStart settles on the next seat that must pick by hand. Departed
// humans are skipped and computers pick a random free cell on the spot. Once
// the turn order is exhausted the session enters the main phase.
func (s *State) advanceStart(st StartStage) []Event {
	var events []Event
	for ; st.TurnIndex < len(s.TurnOrder); st.TurnIndex++ {
		seat := s.TurnOrder[st.TurnIndex]
		if seat.Kind == OwnerHuman {
			if s.IsAdmitted(seat.ID) {
				s.Stage = st
				return events
			}
			continue
		}
		free := s.Grid.unclaimed()
		if len(free) == 0 {
			continue
		}
		idx := free[s.rng.IntN(len(free))]
		s.setOwner(idx, seat)
		events = append(events, Event{Type: EvtStartSquarePicked, Actor: seat, Index: idx})
	}
	s.Stage = MainStage{}
	return append(events, Event{Type: EvtMainPhaseBegan})
}

// CurrentTurn is the seat expected to pick a starting cell, or NoOwner
// outside the starting-square phase.
func (s State) CurrentTurn() Owner {
	st, ok := s.Stage.(StartStage)
	if !ok || st.TurnIndex >= len(s.TurnOrder) {
		return NoOwner
	}
	return s.TurnOrder[st.TurnIndex]
}
