package types

// StateView is the externally visible session state. It is rebuilt from the
// authoritative state after every mutation and never carries timer handles.
//
//	phase: "lobby" | "choosing_start" | "main"
//	owners_by_cell[i]: participant id, "computerN" or "" when unclaimed
//	submitted: ids that already chose this round (targets stay hidden)
type StateView struct {
	GridSize        int               `json:"grid_size"`
	WinCount        int               `json:"win_count"`
	OwnersByCell    []string          `json:"owners_by_cell"`
	DefendedByCell  []bool            `json:"defended_by_cell"`
	Counts          map[string]int    `json:"counts"`
	Phase           string            `json:"phase"`
	Round           int               `json:"round"`
	RoundOpen       bool              `json:"round_open"`
	Countdown       int               `json:"countdown"`
	TurnOrder       []string          `json:"turn_order"`
	CurrentTurnID   string            `json:"current_turn_id"`
	CurrentTurnName string            `json:"current_turn_name"`
	Submitted       []string          `json:"submitted"`
	MoveLog         []MoveView        `json:"move_log"`
	WinnerID        string            `json:"winner_id,omitempty"`
	WinnerName      string            `json:"winner_name,omitempty"`
	Colors          map[string]string `json:"colors"`
	Classes         map[string]string `json:"classes"`
	Names           map[string]string `json:"names"`
	HostID          string            `json:"host_id"`
}

// MoveView is one resolved move of the most recent round.
type MoveView struct {
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
	Index     int    `json:"index"` // -1 for "no placement"
	Kind      string `json:"kind"`  // claim | takeover | defend | bounce | blocked | no placement
	Color     string `json:"color"`
}
