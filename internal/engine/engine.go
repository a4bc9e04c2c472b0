package engine

import "errors"

var ErrWrongPhase = errors.New("wrong phase")
var ErrNotHost = errors.New("not the host")
var ErrNotYourTurn = errors.New("not your turn")
var ErrCellTaken = errors.New("cell already owned")
var ErrOutOfBounds = errors.New("cell out of bounds")
var ErrRoundClosed = errors.New("round not open")
var ErrRoundOpen = errors.New("round already open")
var ErrAlreadySubmitted = errors.New("intent already submitted this round")
var ErrIllegalTarget = errors.New("illegal target")
var ErrNoQuorum = errors.New("not enough participants")
var ErrBadSettings = errors.New("invalid game settings")
var ErrUnknownParticipant = errors.New("unknown participant")
var ErrUnsupportedCommand = errors.New("unsupported command")
var ErrGameOver = errors.New("game already won")

type CommandType string

const (
	CmdAdmit             CommandType = "Admit"
	CmdRemove            CommandType = "Remove"
	CmdConfigureAndStart CommandType = "ConfigureAndStart"
	CmdPickStartSquare   CommandType = "PickStartSquare"
	CmdClaimSquare       CommandType = "ClaimSquare"
	CmdOpenRound         CommandType = "OpenRound"
	CmdTick              CommandType = "Tick"
	CmdReset             CommandType = "Reset"
)

/*
	CmdAdmit             -> EvtParticipantAdmitted -> EvtHostChanged? -> EvtRosterChanged
	CmdRemove            -> EvtParticipantRemoved -> EvtHostChanged? -> EvtRosterChanged -> (start phase skips the seat)
	CmdConfigureAndStart -> EvtGameStarted -> EvtStartSquarePicked* (computers) -> EvtMainPhaseBegan?
	CmdPickStartSquare   -> EvtStartSquarePicked -> ... -> EvtMainPhaseBegan?
	CmdOpenRound         -> EvtRoundOpened
	CmdClaimSquare       -> EvtIntentAccepted
	CmdTick              -> EvtCountdownTicked -> EvtRoundResolved? -> EvtWinnerDeclared?
	CmdReset             -> EvtSessionReset -> EvtRosterChanged
*/

// Command is an inbound intent or a timer-driven step. ParticipantID is always
// the server-side connection identity, never a client-asserted value.
type Command struct {
	Type          CommandType
	ParticipantID string
	Name          string
	Index         int
	NumPlayers    int
	RoundSeconds  int
	Computers     int
}

type EventType string

const (
	EvtParticipantAdmitted EventType = "ParticipantAdmitted"
	EvtParticipantRemoved  EventType = "ParticipantRemoved"
	EvtHostChanged         EventType = "HostChanged"
	EvtRosterChanged       EventType = "RosterChanged"
	EvtGameStarted         EventType = "GameStarted"
	EvtStartSquarePicked   EventType = "StartSquarePicked"
	EvtMainPhaseBegan      EventType = "MainPhaseBegan"
	EvtRoundOpened         EventType = "RoundOpened"
	EvtIntentAccepted      EventType = "IntentAccepted"
	EvtCountdownTicked     EventType = "CountdownTicked"
	EvtRoundResolved       EventType = "RoundResolved"
	EvtWinnerDeclared      EventType = "WinnerDeclared"
	EvtSessionReset        EventType = "SessionReset"
)

type Event struct {
	Type  EventType
	Actor Owner
	Index int
	Kind  MoveKind
}

// Apply runs cmd against a copy of s. On error the input state is returned
// untouched, so every command is all-or-nothing.
func Apply(s State, cmd Command) ([]Event, State, error) {
	next := s.Clone()

	var (
		events []Event
		err    error
	)
	switch cmd.Type {
	case CmdAdmit:
		events, err = next.admit(cmd.ParticipantID, cmd.Name)
	case CmdRemove:
		events, err = next.remove(cmd.ParticipantID)
	case CmdConfigureAndStart:
		events, err = next.configureAndStart(cmd)
	case CmdPickStartSquare:
		events, err = next.pickStart(cmd.ParticipantID, cmd.Index)
	case CmdClaimSquare:
		events, err = next.submitIntent(cmd.ParticipantID, cmd.Index)
	case CmdOpenRound:
		events, err = next.openRound()
	case CmdTick:
		events, err = next.tick()
	case CmdReset:
		events, err = next.reset(cmd.ParticipantID)
	default:
		return nil, s, ErrUnsupportedCommand
	}
	if err != nil {
		return nil, s, err
	}
	return events, next, nil
}
