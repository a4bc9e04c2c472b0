package engine

import (
	"strconv"

	wire "github.com/DoyleJ11/gridclaim/pkg/types"
)

// Snapshot builds the externally visible view of s. It is constructed field
// by field so internal bookkeeping never leaks onto the wire.
func Snapshot(s State) wire.StateView {
	v := wire.StateView{
		GridSize:       s.Grid.Size,
		WinCount:       s.Rules.WinCount,
		OwnersByCell:   make([]string, s.Grid.Len()),
		DefendedByCell: make([]bool, s.Grid.Len()),
		Counts:         make(map[string]int, len(s.Counts)),
		Phase:          string(s.Phase()),
		TurnOrder:      make([]string, 0, len(s.TurnOrder)),
		Submitted:      []string{},
		MoveLog:        make([]wire.MoveView, 0, len(s.MoveLog)),
		Colors:         make(map[string]string, len(s.Colors)),
		Classes:        map[string]string{},
		Names:          map[string]string{},
		HostID:         s.HostID,
	}

	for i, c := range s.Grid.Cells {
		v.OwnersByCell[i] = c.Owner.Key()
		v.DefendedByCell[i] = c.Defended
	}
	for o, n := range s.Counts {
		v.Counts[o.Key()] = n
	}
	for o, color := range s.Colors {
		v.Colors[o.Key()] = color
	}
	for _, seat := range s.TurnOrder {
		v.TurnOrder = append(v.TurnOrder, seat.Key())
		if seat.Kind == OwnerComputer {
			v.Classes[seat.Key()] = seat.Key()
			v.Names[seat.Key()] = s.NameOf(seat)
		}
	}
	for id, p := range s.Known {
		v.Classes[id] = "player" + strconv.Itoa(p.Seq)
		v.Names[id] = p.Name
	}
	for _, p := range s.Roster {
		v.Classes[p.ID] = "player" + strconv.Itoa(p.Seq)
		v.Names[p.ID] = p.Name
	}

	if turn := s.CurrentTurn(); !turn.IsNone() {
		v.CurrentTurnID = turn.Key()
		v.CurrentTurnName = s.NameOf(turn)
	}

	if m, ok := s.Stage.(MainStage); ok {
		v.Round = m.Round.Number
		v.RoundOpen = m.Round.Open
		v.Countdown = m.Round.Countdown
		for _, seat := range s.TurnOrder {
			if _, done := m.Round.Intents[seat]; done && seat.Kind == OwnerHuman {
				v.Submitted = append(v.Submitted, seat.Key())
			}
		}
		if !m.Winner.IsNone() {
			v.WinnerID = m.Winner.Key()
			v.WinnerName = s.NameOf(m.Winner)
		}
	}

	for _, rec := range s.MoveLog {
		v.MoveLog = append(v.MoveLog, wire.MoveView{
			ActorID:   rec.Actor.Key(),
			ActorName: s.NameOf(rec.Actor),
			Index:     rec.Index,
			Kind:      string(rec.Kind),
			Color:     rec.Color,
		})
	}
	return v
}

// RosterOf builds the lobby roster message.
func RosterOf(s State) wire.Roster {
	r := wire.Roster{
		ParticipantIDs: make([]string, 0, len(s.Roster)),
		Names:          make(map[string]string, len(s.Roster)),
		RequiredCount:  s.Settings.NumPlayers,
		HostID:         s.HostID,
	}
	for _, p := range s.Roster {
		r.ParticipantIDs = append(r.ParticipantIDs, p.ID)
		r.Names[p.ID] = p.Name
	}
	return r
}

func StartedOf(s State) wire.GameStarted {
	return wire.GameStarted{
		NumPlayers:   s.Settings.NumPlayers,
		RoundSeconds: s.Settings.RoundSeconds,
		Computers:    s.Settings.Computers,
	}
}
