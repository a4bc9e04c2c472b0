package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedState(t *testing.T, computers int, ids ...string) State {
	t.Helper()
	s := admitAll(t, newTestState(DefaultRules()), ids...)
	_, s = mustApply(t, s, Command{
		Type:          CmdConfigureAndStart,
		ParticipantID: ids[0],
		NumPlayers:    len(ids),
		RoundSeconds:  3,
		Computers:     computers,
	})
	return s
}

func TestPickStart(t *testing.T) {
	cases := []struct {
		name    string
		id      string
		idx     int
		wantErr error
	}{
		{name: "out of turn", id: "q", idx: 5, wantErr: ErrNotYourTurn},
		{name: "stranger", id: "x", idx: 5, wantErr: ErrNotYourTurn},
		{name: "out of bounds", id: "p", idx: 100, wantErr: ErrOutOfBounds},
		{name: "current holder", id: "p", idx: 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := startedState(t, 0, "p", "q")
			events, next, err := Apply(s, Command{Type: CmdPickStartSquare, ParticipantID: tc.id, Index: tc.idx})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, Human("p"), next.CurrentTurn())
				return
			}
			require.NoError(t, err)
			assert.True(t, ContainsEvent(events, EvtStartSquarePicked))
			assert.Equal(t, Human("p"), next.Grid.Cells[tc.idx].Owner)
			assert.Equal(t, 1, next.Counts[Human("p")])
			assert.Equal(t, Human("q"), next.CurrentTurn())
		})
	}
}

func TestPickStart_RejectsOwnedCell(t *testing.T) {
	s := startedState(t, 0, "p", "q")
	_, s = mustApply(t, s, Command{Type: CmdPickStartSquare, ParticipantID: "p", Index: 5})

	_, next, err := Apply(s, Command{Type: CmdPickStartSquare, ParticipantID: "q", Index: 5})
	require.ErrorIs(t, err, ErrCellTaken)
	assert.Equal(t, Human("q"), next.CurrentTurn())
}

func TestPickStart_LastPickEntersMain(t *testing.T) {
	s := startedState(t, 0, "p", "q")
	_, s = mustApply(t, s, Command{Type: CmdPickStartSquare, ParticipantID: "p", Index: 11})
	events, s := mustApply(t, s, Command{Type: CmdPickStartSquare, ParticipantID: "q", Index: 88})

	assert.True(t, ContainsEvent(events, EvtMainPhaseBegan))
	assert.Equal(t, PhaseMain, s.Phase())
	assert.Equal(t, NoOwner, s.CurrentTurn())
	assert.False(t, s.Stage.(MainStage).Round.Open)
}

func TestPickStart_DepartedHolderIsSkipped(t *testing.T) {
	s := startedState(t, 0, "p", "q", "r")
	_, s = mustApply(t, s, Command{Type: CmdPickStartSquare, ParticipantID: "p", Index: 0})

	_, s = mustApply(t, s, Command{Type: CmdRemove, ParticipantID: "q"})
	assert.Equal(t, Human("r"), s.CurrentTurn())

	events, s := mustApply(t, s, Command{Type: CmdPickStartSquare, ParticipantID: "r", Index: 1})
	assert.True(t, ContainsEvent(events, EvtMainPhaseBegan))
	assert.Equal(t, Human("p"), s.Grid.Cells[0].Owner)
}

func TestPickStart_ComputersPickImmediately(t *testing.T) {
	s := startedState(t, 3, "p")
	events, s := mustApply(t, s, Command{Type: CmdPickStartSquare, ParticipantID: "p", Index: 44})

	assert.True(t, ContainsEvent(events, EvtMainPhaseBegan))
	assert.Equal(t, PhaseMain, s.Phase())
	for slot := 0; slot < 3; slot++ {
		assert.Equal(t, 1, s.Counts[Computer(slot)], "computer %d", slot)
	}
	assert.Equal(t, 4, s.OwnedTotal())
	assert.Equal(t, Human("p"), s.Grid.Cells[44].Owner)
	requireCountsMatchGrid(t, s)
}
