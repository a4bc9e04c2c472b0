package session

import (
	"time"

	"github.com/DoyleJ11/gridclaim/internal/engine"
	"go.uber.org/zap"
)

type Timing struct {
	// Tick is the length of one countdown second.
	Tick time.Duration
	// StartDelay separates the last starting pick from round 1.
	StartDelay time.Duration
	// RoundDelay separates a resolution from the next round.
	RoundDelay time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		Tick:       time.Second,
		StartDelay: 500 * time.Millisecond,
		RoundDelay: 1500 * time.Millisecond,
	}
}

// schedule arms or clears the single round timer from the events of one
// command. Later events win, so a Tick that resolves the round and declares a
// winner ends with the timer stopped.
func (s *Session) schedule(events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtMainPhaseBegan:
			s.arm(s.timing.StartDelay, engine.CmdOpenRound)
		case engine.EvtRoundOpened, engine.EvtCountdownTicked:
			s.arm(s.timing.Tick, engine.CmdTick)
		case engine.EvtRoundResolved:
			if len(s.state.Roster) == 0 {
				s.log.Info("no participants left, pausing rounds")
				s.stopTimer()
				break
			}
			s.arm(s.timing.RoundDelay, engine.CmdOpenRound)
		case engine.EvtWinnerDeclared, engine.EvtSessionReset, engine.EvtGameStarted:
			s.stopTimer()
		}
	}
}

// resumeIfPaused restarts rounds for a game that was paused while empty.
func (s *Session) resumeIfPaused() {
	if s.timer != nil || len(s.state.Roster) == 0 {
		return
	}
	m, ok := s.state.Stage.(engine.MainStage)
	if !ok || !m.Winner.IsNone() || m.Round.Open {
		return
	}
	s.log.Info("resuming rounds")
	s.arm(s.timing.StartDelay, engine.CmdOpenRound)
}

func (s *Session) arm(d time.Duration, cmd engine.CommandType) {
	s.stopTimer()
	gen := s.timerGen
	s.timer = time.AfterFunc(d, func() {
		select {
		case s.inbox <- timerFired{gen: gen, cmd: cmd}:
		case <-s.ctx.Done():
		}
	})
	s.log.Debug("timer armed", zap.String("command", string(cmd)), zap.Duration("after", d))
}

// stopTimer cancels the armed timer and invalidates any fire already queued.
func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
}
