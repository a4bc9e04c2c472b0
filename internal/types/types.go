package types

import wire "github.com/DoyleJ11/gridclaim/pkg/types"

const (
	MsgConfigureAndStart = "configure-and-start"
	MsgPickStartSquare   = "pick-start-square"
	MsgClaimSquare       = "claim-square"
	MsgResetSession      = "reset-session"

	MsgWelcome       = "welcome"
	MsgRosterUpdate  = "roster-update"
	MsgGameStarted   = "game-started"
	MsgStateSnapshot = "state-snapshot"
	MsgError         = "error"
)

type ClientMessage struct {
	Type         string `json:"type"`
	Index        *int   `json:"index,omitempty"`
	NumPlayers   int    `json:"num_players,omitempty"`
	RoundSeconds int    `json:"round_seconds,omitempty"`
	Computers    int    `json:"computers,omitempty"`
}

type ServerMessage struct {
	Type    string            `json:"type"` // see Msg* constants
	Version int               `json:"version,omitempty"`
	You     string            `json:"you,omitempty"`
	State   *wire.StateView   `json:"state,omitempty"`
	Roster  *wire.Roster      `json:"roster,omitempty"`
	Started *wire.GameStarted `json:"started,omitempty"`
	Error   string            `json:"error,omitempty"`
}
