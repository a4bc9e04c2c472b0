package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitIntent_Validation(t *testing.T) {
	// p owns 0, q owns 2; 1 sits between them, 50 is far from everyone.
	owned := map[int]string{0: "p", 2: "q"}

	cases := []struct {
		name     string
		id       string
		idx      int
		wantErr  error
		wantKind MoveKind
	}{
		{name: "defend own cell", id: "p", idx: 0, wantKind: MoveDefend},
		{name: "claim adjacent unowned", id: "p", idx: 1, wantKind: MoveClaim},
		{name: "claim far unowned", id: "p", idx: 50, wantErr: ErrIllegalTarget},
		{name: "takeover not adjacent", id: "p", idx: 2, wantErr: ErrIllegalTarget},
		{name: "first move anywhere", id: "r", idx: 50, wantKind: MoveClaim},
		{name: "first move cannot take over", id: "r", idx: 2, wantErr: ErrIllegalTarget},
		{name: "out of bounds", id: "p", idx: -1, wantErr: ErrOutOfBounds},
		{name: "not seated", id: "x", idx: 1, wantErr: ErrUnknownParticipant},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := mainState(t, DefaultRules(), owned, "p", "q", "r")
			events, next, err := Apply(s, Command{Type: CmdClaimSquare, ParticipantID: tc.id, Index: tc.idx})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, next.Stage.(MainStage).Round.Intents)
				return
			}
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, tc.wantKind, events[0].Kind)
			assert.Equal(t, tc.wantKind == MoveDefend, next.Grid.Cells[tc.idx].Defended)
		})
	}
}

func TestSubmitIntent_TakeoverRecordsOrigin(t *testing.T) {
	s := mainState(t, DefaultRules(), map[int]string{5: "p", 15: "p", 6: "q"}, "p", "q")
	s = claim(t, s, "p", 6)

	in := s.Stage.(MainStage).Round.Intents[Human("p")]
	assert.Equal(t, MoveTakeover, in.Kind)
	assert.Equal(t, 5, in.Origin)
}

func TestSubmitIntent_OncePerRound(t *testing.T) {
	s := mainState(t, DefaultRules(), map[int]string{0: "p"}, "p", "q")
	s = claim(t, s, "p", 1)

	_, next, err := Apply(s, Command{Type: CmdClaimSquare, ParticipantID: "p", Index: 10})
	require.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, 1, next.Stage.(MainStage).Round.Intents[Human("p")].Target)
}

func TestSubmitIntent_RoundClosedOrWrongPhase(t *testing.T) {
	s := mainState(t, DefaultRules(), map[int]string{0: "p"}, "p", "q")
	_, s = expire(t, s)
	_, _, err := Apply(s, Command{Type: CmdClaimSquare, ParticipantID: "p", Index: 1})
	assert.ErrorIs(t, err, ErrRoundClosed)

	lobby := admitAll(t, newTestState(DefaultRules()), "p")
	_, _, err = Apply(lobby, Command{Type: CmdClaimSquare, ParticipantID: "p", Index: 1})
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestOpenRound_ClearsDefenceAndIntents(t *testing.T) {
	s := mainState(t, DefaultRules(), map[int]string{0: "p", 99: "q"}, "p", "q")
	s = claim(t, s, "p", 0)
	_, s = expire(t, s)
	require.True(t, s.Grid.Cells[0].Defended)

	events, s := mustApply(t, s, Command{Type: CmdOpenRound})
	assert.True(t, ContainsEvent(events, EvtRoundOpened))
	m := s.Stage.(MainStage)
	assert.Equal(t, 2, m.Round.Number)
	assert.Equal(t, 3, m.Round.Countdown)
	assert.Empty(t, m.Round.Intents)
	assert.False(t, s.Grid.Cells[0].Defended)

	_, _, err := Apply(s, Command{Type: CmdOpenRound})
	assert.ErrorIs(t, err, ErrRoundOpen)
}

func TestTick_CountsDownThenResolves(t *testing.T) {
	s := mainState(t, DefaultRules(), map[int]string{0: "p"}, "p")

	events, s := mustApply(t, s, Command{Type: CmdTick})
	assert.False(t, ContainsEvent(events, EvtRoundResolved))
	assert.Equal(t, 2, s.Stage.(MainStage).Round.Countdown)

	_, s = mustApply(t, s, Command{Type: CmdTick})
	events, s = mustApply(t, s, Command{Type: CmdTick})
	assert.True(t, ContainsEvent(events, EvtRoundResolved))
	assert.False(t, s.Stage.(MainStage).Round.Open)

	_, _, err := Apply(s, Command{Type: CmdTick})
	assert.ErrorIs(t, err, ErrRoundClosed)
}

func TestScenario_ClaimWhileOtherIdles(t *testing.T) {
	s := startedState(t, 0, "p", "q")
	_, s = mustApply(t, s, Command{Type: CmdPickStartSquare, ParticipantID: "p", Index: 11})
	_, s = mustApply(t, s, Command{Type: CmdPickStartSquare, ParticipantID: "q", Index: 88})
	require.Equal(t, PhaseMain, s.Phase())

	_, s = mustApply(t, s, Command{Type: CmdOpenRound})
	assert.Equal(t, 3, s.Stage.(MainStage).Round.Countdown)

	s = claim(t, s, "p", 12)
	_, s = expire(t, s)

	assert.Equal(t, Human("p"), s.Grid.Cells[12].Owner)
	assert.Equal(t, 2, s.Counts[Human("p")])
	assert.Equal(t, 1, s.Counts[Human("q")])

	require.Len(t, s.MoveLog, 2)
	assert.Equal(t, MoveRecord{Actor: Human("p"), Index: 12, Kind: MoveClaim, Color: "#e74c3c"}, s.MoveLog[0])
	assert.Equal(t, MoveRecord{Actor: Human("q"), Index: -1, Kind: MoveNone, Color: IdleColor}, s.MoveLog[1])
	requireCountsMatchGrid(t, s)
}

func TestScenario_MutualTakeoverBounces(t *testing.T) {
	for _, order := range [][]string{{"p", "q"}, {"q", "p"}} {
		s := mainState(t, DefaultRules(), map[int]string{5: "p", 6: "q"}, "p", "q")
		targets := map[string]int{"p": 6, "q": 5}
		for _, id := range order {
			s = claim(t, s, id, targets[id])
		}
		_, s = expire(t, s)

		assert.Equal(t, Human("p"), s.Grid.Cells[5].Owner)
		assert.Equal(t, Human("q"), s.Grid.Cells[6].Owner)
		for _, id := range []string{"p", "q"} {
			rec, ok := logFor(s, Human(id))
			require.True(t, ok)
			assert.Equal(t, MoveBounce, rec.Kind)
			assert.Equal(t, BounceColor, rec.Color)
		}
		requireCountsMatchGrid(t, s)
	}
}

func TestScenario_ContestedCellStaysUnowned(t *testing.T) {
	// 11 touches 1, 10 and 12.
	s := mainState(t, DefaultRules(), map[int]string{1: "p", 10: "q", 12: "r"}, "p", "q", "r")
	for _, id := range []string{"p", "q", "r"} {
		s = claim(t, s, id, 11)
	}
	_, s = expire(t, s)

	assert.True(t, s.Grid.Cells[11].Owner.IsNone())
	for _, id := range []string{"p", "q", "r"} {
		assert.Equal(t, 1, s.Counts[Human(id)])
		rec, _ := logFor(s, Human(id))
		assert.Equal(t, MoveBlocked, rec.Kind)
	}
}

func TestScenario_ContestedTakeoverLeavesOwner(t *testing.T) {
	// p and r both go for q's cell 11.
	s := mainState(t, DefaultRules(), map[int]string{1: "p", 11: "q", 12: "r"}, "p", "q", "r")
	s = claim(t, s, "p", 11)
	s = claim(t, s, "r", 11)
	_, s = expire(t, s)

	assert.Equal(t, Human("q"), s.Grid.Cells[11].Owner)
	requireCountsMatchGrid(t, s)
}

func TestScenario_DefendBeatsSingleTakeover(t *testing.T) {
	s := mainState(t, DefaultRules(), map[int]string{5: "p", 6: "q"}, "p", "q")
	s = claim(t, s, "q", 6)
	assert.True(t, s.Grid.Cells[6].Defended)
	s = claim(t, s, "p", 6)
	_, s = expire(t, s)

	assert.Equal(t, Human("q"), s.Grid.Cells[6].Owner)
	rec, _ := logFor(s, Human("q"))
	assert.Equal(t, MoveDefend, rec.Kind)
	rec, _ = logFor(s, Human("p"))
	assert.Equal(t, MoveBlocked, rec.Kind)
}

func TestScenario_UncontestedTakeoverTransfersOwnership(t *testing.T) {
	s := mainState(t, DefaultRules(), map[int]string{5: "p", 6: "q", 7: "q"}, "p", "q")
	s = claim(t, s, "p", 6)
	_, s = expire(t, s)

	assert.Equal(t, Human("p"), s.Grid.Cells[6].Owner)
	assert.False(t, s.Grid.Cells[6].Defended)
	assert.Equal(t, 2, s.Counts[Human("p")])
	assert.Equal(t, 1, s.Counts[Human("q")])
	requireCountsMatchGrid(t, s)
}

func TestScenario_DisconnectMidRound(t *testing.T) {
	s := mainState(t, DefaultRules(), map[int]string{0: "p", 99: "q"}, "p", "q")
	s = claim(t, s, "p", 1)
	_, s = mustApply(t, s, Command{Type: CmdRemove, ParticipantID: "q"})
	require.True(t, s.Stage.(MainStage).Round.Open)

	_, s = expire(t, s)

	assert.Equal(t, Human("p"), s.Grid.Cells[1].Owner)
	assert.Equal(t, Human("q"), s.Grid.Cells[99].Owner)
	assert.False(t, s.IsAdmitted("q"))
	rec, ok := logFor(s, Human("q"))
	require.True(t, ok)
	assert.Equal(t, MoveNone, rec.Kind)

	// Next round no longer expects q.
	_, s = mustApply(t, s, Command{Type: CmdOpenRound})
	_, s = expire(t, s)
	_, ok = logFor(s, Human("q"))
	assert.False(t, ok)
}

func TestScenario_ZeroCellHumanMayClaimAnywhere(t *testing.T) {
	s := mainState(t, DefaultRules(), map[int]string{5: "p", 6: "q"}, "p", "q")
	s = claim(t, s, "p", 6)
	_, s = expire(t, s)
	require.Zero(t, s.Counts[Human("q")])

	_, s = mustApply(t, s, Command{Type: CmdOpenRound})
	s = claim(t, s, "q", 90)
	_, s = expire(t, s)
	assert.Equal(t, Human("q"), s.Grid.Cells[90].Owner)
}

func TestWinner_EarliestInTurnOrderWinsTies(t *testing.T) {
	rules := DefaultRules()
	rules.WinCount = 2
	s := mainState(t, rules, map[int]string{0: "p", 99: "q"}, "p", "q")
	s = claim(t, s, "q", 98)
	s = claim(t, s, "p", 1)

	events, s := expire(t, s)
	require.True(t, ContainsEvent(events, EvtWinnerDeclared))
	winner, ok := s.Winner()
	require.True(t, ok)
	assert.Equal(t, Human("p"), winner)

	_, _, err := Apply(s, Command{Type: CmdOpenRound})
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestComputers_ActOverSeveralRounds(t *testing.T) {
	s := startedState(t, 2, "p")
	_, s = mustApply(t, s, Command{Type: CmdPickStartSquare, ParticipantID: "p", Index: 0})

	for round := 0; round < 5; round++ {
		_, s = mustApply(t, s, Command{Type: CmdOpenRound})
		_, s = expire(t, s)
		requireCountsMatchGrid(t, s)
		for slot := 0; slot < 2; slot++ {
			seat := Computer(slot)
			assert.Equal(t, s.Counts[seat] <= 0, s.Inactive[seat], "seat %s", seat.Key())
		}
	}
}

func TestComputers_DropOutWhenLastCellIsTaken(t *testing.T) {
	s := admitAll(t, newTestState(DefaultRules()), "p", "q")
	s.TurnOrder = buildTurnOrder(s.Roster, 1)
	s.Colors = assignColors(s.TurnOrder)
	for _, seat := range s.TurnOrder {
		s.Counts[seat] = 0
	}
	bot := Computer(0)
	s.setOwner(4, Human("p"))
	s.setOwner(25, Human("q"))
	s.setOwner(5, bot)
	s.Settings = Settings{NumPlayers: 2, RoundSeconds: 3, Computers: 1}
	s.Stage = MainStage{}
	_, s = mustApply(t, s, Command{Type: CmdOpenRound})
	require.Contains(t, s.Stage.(MainStage).Round.Roster, bot)

	// p takes the computer's only cell while the computer and q collide on 15.
	s = claim(t, s, "p", 5)
	s = claim(t, s, "q", 15)
	m := s.Stage.(MainStage)
	in, err := s.classify(bot, 15)
	require.NoError(t, err)
	s.record(&m.Round, bot, in)
	s.Stage = m

	_, s = expire(t, s)
	requireCountsMatchGrid(t, s)
	assert.Equal(t, Human("p"), s.Grid.Cells[5].Owner)
	assert.Zero(t, s.Counts[bot])
	assert.True(t, s.Inactive[bot])
	rec, ok := logFor(s, bot)
	require.True(t, ok)
	assert.Equal(t, MoveBlocked, rec.Kind)
	assert.Nil(t, s.computerOptions(bot))

	_, s = mustApply(t, s, Command{Type: CmdOpenRound})
	assert.NotContains(t, s.Stage.(MainStage).Round.Roster, bot)
	assert.Equal(t, []Owner{Human("p"), Human("q")}, s.Stage.(MainStage).Round.Roster)

	_, s = expire(t, s)
	_, acted := s.Stage.(MainStage).Round.Intents[bot]
	assert.False(t, acted)
	_, logged := logFor(s, bot)
	assert.False(t, logged)
	assert.True(t, s.Inactive[bot])
}

func TestBouncedSeats_IgnoresOneSidedAttacks(t *testing.T) {
	intents := map[Owner]Intent{
		Human("p"): {Target: 6, Origin: 5, Kind: MoveTakeover},
		Human("q"): {Target: 7, Origin: 6, Kind: MoveTakeover},
		Human("r"): {Target: 5, Origin: -1, Kind: MoveDefend},
	}
	assert.Empty(t, bouncedSeats(intents))

	intents[Human("q")] = Intent{Target: 5, Origin: 6, Kind: MoveTakeover}
	assert.Equal(t, map[Owner]bool{Human("p"): true, Human("q"): true}, bouncedSeats(intents))
}
