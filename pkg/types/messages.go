package types

// Client -> Server
//
// configure-and-start (host only):
//   num_players: number
//   round_seconds: number
//   computers: number // optional, 0..8
//
// pick-start-square:
//   index: number
//
// claim-square:
//   index: number
//
// reset-session: {}

// Server -> Client
//
// welcome:        you: string
// roster-update:  roster: Roster
// game-started:   started: GameStarted
// state-snapshot: state: StateView
// error:          error: string (malformed input only)

// Roster is sent whenever admission or removal changes the lobby.
type Roster struct {
	ParticipantIDs []string          `json:"participant_ids"`
	Names          map[string]string `json:"names"`
	RequiredCount  int               `json:"required_count"`
	HostID         string            `json:"host_id"`
}

// GameStarted is sent once when a session leaves the lobby.
type GameStarted struct {
	NumPlayers   int `json:"num_players"`
	RoundSeconds int `json:"round_seconds"`
	Computers    int `json:"computers"`
}
