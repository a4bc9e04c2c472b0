package engine

func (s *State) openRound() ([]Event, error) {
	m, ok := s.Stage.(MainStage)
	if !ok {
		return nil, ErrWrongPhase
	}
	if !m.Winner.IsNone() {
		return nil, ErrGameOver
	}
	if m.Round.Open {
		return nil, ErrRoundOpen
	}

	for i := range s.Grid.Cells {
		s.Grid.Cells[i].Defended = false
	}
	m.Round = Round{
		Number:    m.Round.Number + 1,
		Open:      true,
		Countdown: s.Settings.RoundSeconds,
		Intents:   map[Owner]Intent{},
		Roster:    s.actingSeats(),
	}
	s.Stage = m
	return []Event{{Type: EvtRoundOpened, Index: m.Round.Number}}, nil
}

// actingSeats lists, in turn order, the seats that can still act: connected
// humans and computers that have not been knocked out.
func (s State) actingSeats() []Owner {
	var seats []Owner
	for _, seat := range s.TurnOrder {
		switch seat.Kind {
		case OwnerHuman:
			if s.IsAdmitted(seat.ID) {
				seats = append(seats, seat)
			}
		case OwnerComputer:
			if !s.Inactive[seat] {
				seats = append(seats, seat)
			}
		}
	}
	return seats
}

func (s *State) tick() ([]Event, error) {
	m, ok := s.Stage.(MainStage)
	if !ok {
		return nil, ErrWrongPhase
	}
	if !m.Round.Open {
		return nil, ErrRoundClosed
	}
	m.Round.Countdown--
	s.Stage = m

	events := []Event{{Type: EvtCountdownTicked, Index: m.Round.Countdown}}
	if m.Round.Countdown > 0 {
		return events, nil
	}
	return append(events, s.resolve()...), nil
}

func (s *State) submitIntent(id string, idx int) ([]Event, error) {
	m, ok := s.Stage.(MainStage)
	if !ok {
		return nil, ErrWrongPhase
	}
	if !m.Winner.IsNone() {
		return nil, ErrGameOver
	}
	if !m.Round.Open {
		return nil, ErrRoundClosed
	}
	actor := Human(id)
	if !s.IsAdmitted(id) || !s.seated(actor) {
		return nil, ErrUnknownParticipant
	}
	if _, done := m.Round.Intents[actor]; done {
		return nil, ErrAlreadySubmitted
	}
	if !s.Grid.InBounds(idx) {
		return nil, ErrOutOfBounds
	}

	intent, err := s.classify(actor, idx)
	if err != nil {
		return nil, err
	}
	s.record(&m.Round, actor, intent)
	s.Stage = m
	return []Event{{Type: EvtIntentAccepted, Actor: actor, Index: idx, Kind: intent.Kind}}, nil
}

// record stores an intent. A defend is visible at once through the cell's
// defended flag.
func (s *State) record(r *Round, actor Owner, intent Intent) {
	if intent.Kind == MoveDefend {
		s.Grid.Cells[intent.Target].Defended = true
	}
	r.Intents[actor] = intent
}

// classify decides whether idx is a defend, takeover or claim for actor.
func (s State) classify(actor Owner, idx int) (Intent, error) {
	owner := s.Grid.Cells[idx].Owner
	switch {
	case owner == actor:
		return Intent{Target: idx, Origin: -1, Kind: MoveDefend}, nil
	case !owner.IsNone():
		origin, ok := s.Grid.adjacentOwnedBy(idx, actor)
		if !ok {
			return Intent{}, ErrIllegalTarget
		}
		return Intent{Target: idx, Origin: origin, Kind: MoveTakeover}, nil
	default:
		// First move: a seat with no cells may claim anywhere.
		if s.Counts[actor] <= 0 {
			return Intent{Target: idx, Origin: -1, Kind: MoveClaim}, nil
		}
		if _, ok := s.Grid.adjacentOwnedBy(idx, actor); !ok {
			return Intent{}, ErrIllegalTarget
		}
		return Intent{Target: idx, Origin: -1, Kind: MoveClaim}, nil
	}
}

func (s State) seated(o Owner) bool {
	for _, seat := range s.TurnOrder {
		if seat == o {
			return true
		}
	}
	return false
}

// resolve closes the round and applies every intent simultaneously. Bounces
// and per-cell contention are computed from the pre-resolution snapshot, so
// the turn-order walk below only decides the order of the move log.
func (s *State) resolve() []Event {
	m := s.Stage.(MainStage)
	m.Round.Open = false
	m.Round.Countdown = 0
	s.chooseComputerIntents(&m.Round)

	before := s.Grid.clone()
	bounced := bouncedSeats(m.Round.Intents)
	contention := make(map[int]int, len(m.Round.Intents))
	for _, in := range m.Round.Intents {
		contention[in.Target]++
	}
	expected := make(map[Owner]bool, len(m.Round.Roster))
	for _, seat := range m.Round.Roster {
		expected[seat] = true
	}

	var log []MoveRecord
	for _, seat := range s.TurnOrder {
		in, ok := m.Round.Intents[seat]
		if !ok {
			if expected[seat] {
				log = append(log, MoveRecord{Actor: seat, Index: -1, Kind: MoveNone, Color: IdleColor})
			}
			continue
		}

		kind := in.Kind
		prev := before.Cells[in.Target]
		switch {
		case bounced[seat]:
			kind = MoveBounce
		case in.Kind == MoveDefend:
			s.Grid.Cells[in.Target].Defended = true
		case contention[in.Target] > 1:
			kind = MoveBlocked
		case in.Kind == MoveTakeover && (prev.Defended || prev.Owner.IsNone() || prev.Owner == seat):
			kind = MoveBlocked
		case in.Kind == MoveClaim && !prev.Owner.IsNone():
			kind = MoveBlocked
		default:
			s.setOwner(in.Target, seat)
		}

		color := s.Colors[seat]
		if kind == MoveBounce {
			color = BounceColor
		}
		log = append(log, MoveRecord{Actor: seat, Index: in.Target, Kind: kind, Color: color})
	}
	s.MoveLog = log

	for _, seat := range s.TurnOrder {
		if seat.Kind == OwnerComputer && s.Counts[seat] <= 0 {
			s.Inactive[seat] = true
		}
	}

	events := []Event{{Type: EvtRoundResolved, Index: m.Round.Number}}
	if winner, ok := s.winner(); ok {
		m.Winner = winner
		events = append(events, Event{Type: EvtWinnerDeclared, Actor: winner})
	}
	s.Stage = m
	return events
}

// bouncedSeats marks both sides of every pair of takeovers that target each
// other's origin.
func bouncedSeats(intents map[Owner]Intent) map[Owner]bool {
	out := map[Owner]bool{}
	for a, ia := range intents {
		if ia.Origin < 0 {
			continue
		}
		for b, ib := range intents {
			if a == b || ib.Origin < 0 {
				continue
			}
			if ia.Target == ib.Origin && ib.Target == ia.Origin {
				out[a] = true
				out[b] = true
			}
		}
	}
	return out
}

// winner returns the first seat in turn order at or above the win count.
func (s State) winner() (Owner, bool) {
	for _, seat := range s.TurnOrder {
		if s.Counts[seat] >= s.Rules.WinCount {
			return seat, true
		}
	}
	return NoOwner, false
}
