package session

import (
	"context"
	"time"

	"github.com/DoyleJ11/gridclaim/internal/engine"
	"github.com/DoyleJ11/gridclaim/internal/results"
	"github.com/DoyleJ11/gridclaim/internal/types"
	"go.uber.org/zap"
)

type Msg interface{ isSessionMsg() }

// FromClient carries a command from a connection. The session overwrites
// Cmd.ParticipantID with ClientID.
type FromClient struct {
	ClientID string
	Cmd      engine.Command
}

func (FromClient) isSessionMsg() {}

type Join struct {
	ClientID string
	Name     string
	Outbox   chan types.ServerMessage // where this client wants to receive messages
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

// timerFired is posted by the round timer. Fires whose gen no longer matches
// the armed timer are dropped.
type timerFired struct {
	gen uint64
	cmd engine.CommandType
}

func (timerFired) isSessionMsg() {}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

// Recorder stores finished games.
type Recorder interface {
	Record(ctx context.Context, r results.GameResult) error
}

type Options struct {
	Code     string
	Timing   Timing
	Logger   *zap.Logger
	Recorder Recorder
}

type Session struct {
	code    string
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]chan types.ServerMessage

	timing   Timing
	timer    *time.Timer
	timerGen uint64

	log      *zap.Logger
	recorder Recorder

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSession(parent context.Context, initial engine.State, opts Options) *Session {
	ctx, cancel := context.WithCancel(parent)

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timing := opts.Timing
	if timing == (Timing{}) {
		timing = DefaultTiming()
	}

	s := &Session{
		code:     opts.Code,
		inbox:    make(chan Msg, 64),
		state:    initial,
		clients:  make(map[string]chan types.ServerMessage),
		timing:   timing,
		log:      logger.With(zap.String("session", opts.Code)),
		recorder: opts.Recorder,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go s.loop()
	return s
}

// Inbox exposes the session's queue to the hub, tests and the ws layer.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Send queues msg unless ctx or the session ends first.
func (s *Session) Send(ctx context.Context, msg Msg) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.inbox <- msg:
		return true
	case <-ctx.Done():
		return false
	case <-s.done:
		return false
	}
}

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Code() string { return s.code }

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.join(msg)

			case Leave:
				if ch, ok := s.clients[msg.ClientID]; ok {
					close(ch) // releases the connection's writer
					delete(s.clients, msg.ClientID)
				}
				s.apply(engine.Command{Type: engine.CmdRemove, ParticipantID: msg.ClientID})

			case FromClient:
				cmd := msg.Cmd
				cmd.ParticipantID = msg.ClientID
				s.apply(cmd)

			case timerFired:
				if msg.gen != s.timerGen {
					break
				}
				s.timer = nil
				s.apply(engine.Command{Type: msg.cmd})

			case GetState:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.state,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) join(msg Join) {
	if old, ok := s.clients[msg.ClientID]; ok && old != msg.Outbox {
		close(old)
	}
	s.clients[msg.ClientID] = msg.Outbox
	s.sendTo(msg.ClientID, types.ServerMessage{Type: types.MsgWelcome, You: msg.ClientID})

	if !s.apply(engine.Command{Type: engine.CmdAdmit, ParticipantID: msg.ClientID, Name: msg.Name}) {
		// Already admitted: nothing was broadcast, so catch this client up.
		s.sendTo(msg.ClientID, s.rosterMsg())
		s.sendTo(msg.ClientID, s.snapshotMsg())
	}
	s.resumeIfPaused()
}

// apply runs cmd through the engine and publishes the result. It reports
// whether anything changed.
func (s *Session) apply(cmd engine.Command) bool {
	events, next, err := engine.Apply(s.state, cmd)
	if err != nil {
		s.log.Debug("command rejected",
			zap.String("command", string(cmd.Type)),
			zap.String("participant", cmd.ParticipantID),
			zap.Error(err))
		return false
	}
	if len(events) == 0 {
		return false
	}

	s.state = next
	s.version++
	s.publish(events)
	s.schedule(events)
	s.observe(events)
	return true
}

func (s *Session) publish(events []engine.Event) {
	if engine.ContainsEvent(events, engine.EvtRosterChanged) {
		s.broadcast(s.rosterMsg())
	}
	if engine.ContainsEvent(events, engine.EvtGameStarted) {
		started := engine.StartedOf(s.state)
		s.broadcast(types.ServerMessage{Type: types.MsgGameStarted, Version: s.version, Started: &started})
	}
	s.broadcast(s.snapshotMsg())
}

func (s *Session) observe(events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtGameStarted:
			s.log.Info("game started",
				zap.Int("num_players", s.state.Settings.NumPlayers),
				zap.Int("computers", s.state.Settings.Computers),
				zap.Int("round_seconds", s.state.Settings.RoundSeconds))
		case engine.EvtMainPhaseBegan:
			s.log.Info("main phase began", zap.Int("seats", len(s.state.TurnOrder)))
		case engine.EvtWinnerDeclared:
			s.log.Info("winner declared",
				zap.String("winner", ev.Actor.Key()),
				zap.Int("round", s.state.RoundNumber()))
			s.recordResult()
		case engine.EvtSessionReset:
			s.log.Info("session reset")
		}
	}
}

func (s *Session) recordResult() {
	if s.recorder == nil {
		return
	}
	winner, ok := s.state.Winner()
	if !ok {
		return
	}
	scores := make(map[string]int, len(s.state.TurnOrder))
	for _, seat := range s.state.TurnOrder {
		scores[seat.Key()] = s.state.Counts[seat]
	}
	res, err := results.NewGameResult(s.code, winner.Key(), s.state.NameOf(winner), s.state.RoundNumber(), scores, time.Now())
	if err != nil {
		s.log.Warn("building result failed", zap.Error(err))
		return
	}

	rec, log := s.recorder, s.log
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), 5*time.Second)
	go func() {
		defer cancel()
		if err := rec.Record(ctx, res); err != nil {
			log.Warn("recording result failed", zap.Error(err))
		}
	}()
}

func (s *Session) rosterMsg() types.ServerMessage {
	roster := engine.RosterOf(s.state)
	return types.ServerMessage{Type: types.MsgRosterUpdate, Version: s.version, Roster: &roster}
}

func (s *Session) snapshotMsg() types.ServerMessage {
	view := engine.Snapshot(s.state)
	return types.ServerMessage{Type: types.MsgStateSnapshot, Version: s.version, State: &view}
}

func (s *Session) shutdown() {
	s.stopTimer()
	for id, ch := range s.clients {
		close(ch) // no more messages for this client
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) sendTo(id string, msg types.ServerMessage) {
	ch, ok := s.clients[id]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		close(ch)
		delete(s.clients, id)
	}
}

func (s *Session) broadcast(msg types.ServerMessage) {
	for id := range s.clients {
		s.sendTo(id, msg)
	}
}
