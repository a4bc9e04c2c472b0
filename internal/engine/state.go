package engine

import (
	"maps"
	"math/rand/v2"
	"slices"
)

type Phase string

const (
	PhaseLobby         Phase = "lobby"
	PhaseChoosingStart Phase = "choosing_start"
	PhaseMain          Phase = "main"
)

// Stage is the phase-tagged part of the state. Exactly one of LobbyStage,
// StartStage or MainStage is active.
type Stage interface {
	Phase() Phase
}

type LobbyStage struct{}

// StartStage waits for TurnOrder[TurnIndex] to pick a starting cell.
type StartStage struct {
	TurnIndex int
}

// MainStage runs rounds until Winner is set.
type MainStage struct {
	Round  Round
	Winner Owner
}

func (LobbyStage) Phase() Phase { return PhaseLobby }
func (StartStage) Phase() Phase { return PhaseChoosingStart }
func (MainStage) Phase() Phase  { return PhaseMain }

type MoveKind string

const (
	MoveClaim    MoveKind = "claim"
	MoveTakeover MoveKind = "takeover"
	MoveDefend   MoveKind = "defend"
	MoveBounce   MoveKind = "bounce"
	MoveBlocked  MoveKind = "blocked"
	MoveNone     MoveKind = "no placement"
)

// Intent is one seat's choice for the current round. Origin is only set for
// takeovers and is -1 otherwise.
type Intent struct {
	Target int
	Origin int
	Kind   MoveKind
}

type Round struct {
	Number    int
	Open      bool
	Countdown int
	Intents   map[Owner]Intent
	// Seats expected to act when the round opened.
	Roster []Owner
}

type MoveRecord struct {
	Actor Owner
	Index int
	Kind  MoveKind
	Color string
}

type Participant struct {
	ID   string
	Name string
	Seq  int
}

type Rules struct {
	GridSize            int
	WinCount            int
	DefaultNumPlayers   int
	DefaultRoundSeconds int
	MaxRoundSeconds     int
}

func DefaultRules() Rules {
	return Rules{
		GridSize:            10,
		WinCount:            30,
		DefaultNumPlayers:   2,
		DefaultRoundSeconds: 3,
		MaxRoundSeconds:     30,
	}
}

type Settings struct {
	NumPlayers   int
	RoundSeconds int
	Computers    int
}

type State struct {
	Rules    Rules
	Settings Settings
	Grid     Grid
	Counts   map[Owner]int

	// Roster holds admitted, still-connected humans in admission order.
	Roster []Participant
	// Known remembers every human of the current game, so departed owners
	// keep their names.
	Known  map[string]Participant
	HostID string

	TurnOrder []Owner
	Colors    map[Owner]string
	Inactive  map[Owner]bool

	Stage   Stage
	MoveLog []MoveRecord

	rng *rand.Rand
}

func NewState(rules Rules, rng *rand.Rand) State {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return State{
		Rules:    rules,
		Settings: defaultSettings(rules),
		Grid:     NewGrid(rules.GridSize),
		Counts:   map[Owner]int{},
		Known:    map[string]Participant{},
		Colors:   map[Owner]string{},
		Inactive: map[Owner]bool{},
		Stage:    LobbyStage{},
		rng:      rng,
	}
}

func defaultSettings(r Rules) Settings {
	return Settings{NumPlayers: r.DefaultNumPlayers, RoundSeconds: r.DefaultRoundSeconds}
}

// Clone returns a deep copy so a failed command never leaks partial writes.
func (s State) Clone() State {
	c := s
	c.Grid = s.Grid.clone()
	c.Counts = maps.Clone(s.Counts)
	c.Roster = slices.Clone(s.Roster)
	c.Known = maps.Clone(s.Known)
	c.TurnOrder = slices.Clone(s.TurnOrder)
	c.Colors = maps.Clone(s.Colors)
	c.Inactive = maps.Clone(s.Inactive)
	c.MoveLog = slices.Clone(s.MoveLog)
	if m, ok := s.Stage.(MainStage); ok {
		m.Round.Intents = maps.Clone(m.Round.Intents)
		m.Round.Roster = slices.Clone(m.Round.Roster)
		c.Stage = m
	}
	return c
}

func (s State) Phase() Phase {
	if s.Stage == nil {
		return PhaseLobby
	}
	return s.Stage.Phase()
}

// setOwner moves idx to o and keeps Counts in step with the grid.
func (s *State) setOwner(idx int, o Owner) {
	cell := &s.Grid.Cells[idx]
	if cell.Owner == o {
		return
	}
	if !cell.Owner.IsNone() {
		s.Counts[cell.Owner]--
	}
	cell.Owner = o
	cell.Defended = false
	if !o.IsNone() {
		s.Counts[o]++
	}
}

// resetBoard clears everything a game writes, keeping the roster.
func (s *State) resetBoard() {
	s.Grid = NewGrid(s.Rules.GridSize)
	s.Counts = map[Owner]int{}
	s.Inactive = map[Owner]bool{}
	s.MoveLog = nil
	s.Known = make(map[string]Participant, len(s.Roster))
	for _, p := range s.Roster {
		s.Known[p.ID] = p
	}
}
