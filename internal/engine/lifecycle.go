package engine

import "fmt"

// configureAndStart freezes the turn order and moves the session from the
// lobby into the starting-square phase. Only the server's own host is honored.
func (s *State) configureAndStart(cmd Command) ([]Event, error) {
	if _, ok := s.Stage.(LobbyStage); !ok {
		return nil, ErrWrongPhase
	}
	if len(s.Roster) == 0 {
		return nil, ErrNoQuorum
	}
	if cmd.ParticipantID == "" || cmd.ParticipantID != s.HostID {
		return nil, ErrNotHost
	}
	if err := s.validateSettings(cmd); err != nil {
		return nil, err
	}

	s.Settings = Settings{
		NumPlayers:   cmd.NumPlayers,
		RoundSeconds: cmd.RoundSeconds,
		Computers:    cmd.Computers,
	}
	s.resetBoard()
	s.TurnOrder = buildTurnOrder(s.Roster, cmd.Computers)
	s.Colors = assignColors(s.TurnOrder)
	for _, seat := range s.TurnOrder {
		s.Counts[seat] = 0
	}

	events := []Event{{Type: EvtGameStarted, Actor: Human(s.HostID)}}
	return append(events, s.advanceStart(StartStage{})...), nil
}

func (s State) validateSettings(cmd Command) error {
	switch {
	case cmd.NumPlayers < 1:
		return fmt.Errorf("%w: num players %d", ErrBadSettings, cmd.NumPlayers)
	case cmd.NumPlayers > len(s.Roster):
		return fmt.Errorf("%w: need %d, have %d", ErrNoQuorum, cmd.NumPlayers, len(s.Roster))
	case cmd.RoundSeconds < 1 || cmd.RoundSeconds > s.Rules.MaxRoundSeconds:
		return fmt.Errorf("%w: round seconds %d", ErrBadSettings, cmd.RoundSeconds)
	case cmd.Computers < 0 || cmd.Computers > len(ComputerPlayers):
		return fmt.Errorf("%w: computers %d", ErrBadSettings, cmd.Computers)
	case len(s.Roster)+cmd.Computers > s.Grid.Len():
		return fmt.Errorf("%w: %d seats on %d cells", ErrBadSettings, len(s.Roster)+cmd.Computers, s.Grid.Len())
	}
	return nil
}

// reset returns the session to the lobby. The host is kept while still
// connected, otherwise the earliest-admitted participant takes over; the
// requester never becomes host just by asking.
func (s *State) reset(requester string) ([]Event, error) {
	if !s.IsAdmitted(requester) {
		return nil, ErrUnknownParticipant
	}

	s.resetBoard()
	s.Settings = defaultSettings(s.Rules)
	s.TurnOrder = nil
	s.Colors = map[Owner]string{}
	s.Stage = LobbyStage{}

	events := []Event{{Type: EvtSessionReset, Actor: Human(requester)}}
	if !s.IsAdmitted(s.HostID) {
		s.HostID = s.Roster[0].ID
		events = append(events, Event{Type: EvtHostChanged, Actor: Human(s.HostID)})
	}
	return append(events, Event{Type: EvtRosterChanged}), nil
}
