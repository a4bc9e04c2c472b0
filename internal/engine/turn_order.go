package engine

// Human colors follow turn order: host red, next blue, then green and so on.
var HumanColors = []string{
	"#e74c3c",
	"#2980b9",
	"#27ae60",
	"#f1c40f",
	"#8e44ad",
	"#e67e22",
	"#1abc9c",
	"#34495e",
}

type ComputerProfile struct {
	Name  string
	Color string
}

var ComputerPlayers = []ComputerProfile{
	{Name: "Blue", Color: "#3498db"},
	{Name: "Green", Color: "#27ae60"},
	{Name: "Yellow", Color: "#f1c40f"},
	{Name: "Purple", Color: "#9b59b6"},
	{Name: "Orange", Color: "#e67e22"},
	{Name: "Pink", Color: "#e84393"},
	{Name: "Cyan", Color: "#00b8d4"},
	{Name: "Brown", Color: "#8d5524"},
}

const (
	BounceColor = "#f1c40f"
	IdleColor   = "#888"
)

// buildTurnOrder seats every admitted human in admission order, followed by
// the requested computers.
func buildTurnOrder(roster []Participant, computers int) []Owner {
	order := make([]Owner, 0, len(roster)+computers)
	for _, p := range roster {
		order = append(order, Human(p.ID))
	}
	for slot := 0; slot < computers; slot++ {
		order = append(order, Computer(slot))
	}
	return order
}

func assignColors(order []Owner) map[Owner]string {
	colors := make(map[Owner]string, len(order))
	humans := 0
	for _, seat := range order {
		switch seat.Kind {
		case OwnerHuman:
			colors[seat] = HumanColors[humans%len(HumanColors)]
			humans++
		case OwnerComputer:
			colors[seat] = ComputerPlayers[seat.Slot%len(ComputerPlayers)].Color
		}
	}
	return colors
}
