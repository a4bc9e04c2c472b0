package engine

// chooseComputerIntents lets every active computer that was seated when the
// round opened pick uniformly among its legal targets.
func (s *State) chooseComputerIntents(r *Round) {
	for _, seat := range r.Roster {
		if seat.Kind != OwnerComputer || s.Inactive[seat] {
			continue
		}
		if _, done := r.Intents[seat]; done {
			continue
		}
		options := s.computerOptions(seat)
		if len(options) == 0 {
			continue
		}
		intent, err := s.classify(seat, options[s.rng.IntN(len(options))])
		if err != nil {
			continue
		}
		s.record(r, seat, intent)
	}
}

// computerOptions lists own cells to defend plus every cell next to one of
// them. A computer without cells has nothing to do.
func (s State) computerOptions(seat Owner) []int {
	if s.Counts[seat] <= 0 {
		return nil
	}
	var options []int
	for i, c := range s.Grid.Cells {
		if c.Owner == seat {
			options = append(options, i)
			continue
		}
		if _, ok := s.Grid.adjacentOwnedBy(i, seat); ok {
			options = append(options, i)
		}
	}
	return options
}
