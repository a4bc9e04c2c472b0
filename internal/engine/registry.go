package engine

import (
	"fmt"
	"slices"
)

func (s *State) admit(id, name string) ([]Event, error) {
	if id == "" {
		return nil, ErrUnknownParticipant
	}
	if s.IsAdmitted(id) {
		return nil, nil
	}

	p := Participant{ID: id, Name: name, Seq: s.lowestFreeSeq()}
	if p.Name == "" {
		p.Name = fmt.Sprintf("Player %d", p.Seq)
	}
	s.Roster = append(s.Roster, p)
	if _, lobby := s.Stage.(LobbyStage); lobby {
		s.Known[id] = p
	}

	events := []Event{{Type: EvtParticipantAdmitted, Actor: Human(id)}}
	if s.HostID == "" {
		s.HostID = id
		events = append(events, Event{Type: EvtHostChanged, Actor: Human(id)})
	}
	return append(events, Event{Type: EvtRosterChanged}), nil
}

// remove drops a participant from the roster. Cells they own stay on the
// board; a starting-square turn they were holding is skipped.
func (s *State) remove(id string) ([]Event, error) {
	i := s.rosterIndex(id)
	if i < 0 {
		return nil, ErrUnknownParticipant
	}
	s.Roster = slices.Delete(s.Roster, i, i+1)
	if _, lobby := s.Stage.(LobbyStage); lobby {
		delete(s.Known, id)
	}

	events := []Event{{Type: EvtParticipantRemoved, Actor: Human(id)}}
	if s.HostID == id {
		s.HostID = ""
		host := NoOwner
		if len(s.Roster) > 0 {
			s.HostID = s.Roster[0].ID
			host = Human(s.HostID)
		}
		events = append(events, Event{Type: EvtHostChanged, Actor: host})
	}
	events = append(events, Event{Type: EvtRosterChanged})

	if st, ok := s.Stage.(StartStage); ok && s.CurrentTurn() == Human(id) {
		events = append(events, s.advanceStart(st)...)
	}
	return events, nil
}

// lowestFreeSeq skips numbers held by departed owners of the running game as
// well as the roster, so no two humans on the board share a class.
func (s *State) lowestFreeSeq() int {
	used := make(map[int]bool, len(s.Roster)+len(s.Known))
	for _, p := range s.Roster {
		used[p.Seq] = true
	}
	for _, p := range s.Known {
		used[p.Seq] = true
	}
	n := 1
	for used[n] {
		n++
	}
	return n
}

func (s State) rosterIndex(id string) int {
	return slices.IndexFunc(s.Roster, func(p Participant) bool { return p.ID == id })
}

func (s State) IsAdmitted(id string) bool { return s.rosterIndex(id) >= 0 }

// NameOf returns the display name of a seat, including departed humans.
func (s State) NameOf(o Owner) string {
	switch o.Kind {
	case OwnerHuman:
		if p, ok := s.Known[o.ID]; ok {
			return p.Name
		}
		if i := s.rosterIndex(o.ID); i >= 0 {
			return s.Roster[i].Name
		}
		return "Unknown"
	case OwnerComputer:
		return ComputerPlayers[o.Slot%len(ComputerPlayers)].Name
	default:
		return ""
	}
}
