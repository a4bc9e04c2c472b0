package hub

import (
	"context"
	"errors"

	"github.com/DoyleJ11/gridclaim/internal/engine"
	"github.com/DoyleJ11/gridclaim/internal/session"
	"go.uber.org/zap"
)

type HubMsg interface{ isHubMsg() }

// CreateSession replies nil when Code is already taken.
type CreateSession struct {
	Code  string
	Reply chan *session.Session
}

type GetSession struct {
	Code  string
	Reply chan *session.Session
}

// EnsureSession returns the session for Code, creating it if needed.
type EnsureSession struct {
	Code  string
	Reply chan *session.Session
}

type RemoveSession struct {
	Code string
}

// ShutdownHub stops every session. Done, if set, is closed once they have all
// exited.
type ShutdownHub struct {
	Done chan struct{}
}

func (CreateSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (EnsureSession) isHubMsg() {}
func (RemoveSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

// Config is applied to every session the hub creates.
type Config struct {
	Rules    engine.Rules
	Timing   session.Timing
	Logger   *zap.Logger
	Recorder session.Recorder
}

var ErrHubClosed = errors.New("hub closed")

type Hub struct {
	inbox    chan HubMsg
	done     chan struct{}
	sessions map[string]*session.Session
	cfg      Config
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, cfg Config) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Rules == (engine.Rules{}) {
		cfg.Rules = engine.DefaultRules()
	}
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		done:     make(chan struct{}),
		sessions: make(map[string]*session.Session),
		cfg:      cfg,
		log:      cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the hub loop has exited.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) Get(ctx context.Context, code string) (*session.Session, error) {
	return h.ask(ctx, func(reply chan *session.Session) HubMsg { return GetSession{Code: code, Reply: reply} })
}

func (h *Hub) Create(ctx context.Context, code string) (*session.Session, error) {
	return h.ask(ctx, func(reply chan *session.Session) HubMsg { return CreateSession{Code: code, Reply: reply} })
}

func (h *Hub) Ensure(ctx context.Context, code string) (*session.Session, error) {
	return h.ask(ctx, func(reply chan *session.Session) HubMsg { return EnsureSession{Code: code, Reply: reply} })
}

// ask sends a request and waits for the reply, giving up when ctx ends or the
// hub stops.
func (h *Hub) ask(ctx context.Context, build func(chan *session.Session) HubMsg) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reply := make(chan *session.Session, 1)
	select {
	case <-h.done:
		return nil, ErrHubClosed
	default:
	}
	select {
	case h.inbox <- build(reply):
	case <-h.done:
		return nil, ErrHubClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-h.done:
		// The loop may have answered just before exiting.
		select {
		case s := <-reply:
			return s, nil
		default:
			return nil, ErrHubClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			// Sessions share h.ctx and stop on their own.
			clear(h.sessions)
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateSession:
				if h.sessions[msg.Code] != nil {
					msg.Reply <- nil
					break
				}
				msg.Reply <- h.start(msg.Code)

			case GetSession:
				msg.Reply <- h.sessions[msg.Code] // May be nil

			case EnsureSession:
				if s := h.sessions[msg.Code]; s != nil {
					msg.Reply <- s
					break
				}
				msg.Reply <- h.start(msg.Code)

			case RemoveSession:
				if s := h.sessions[msg.Code]; s != nil {
					s.Send(h.ctx, session.Shutdown{})
					delete(h.sessions, msg.Code)
					h.log.Info("session removed", zap.String("session", msg.Code))
				}

			case ShutdownHub:
				stopping := make([]*session.Session, 0, len(h.sessions))
				for _, s := range h.sessions {
					s.Send(h.ctx, session.Shutdown{})
					stopping = append(stopping, s)
				}
				clear(h.sessions)
				if msg.Done != nil {
					go func() {
						for _, s := range stopping {
							<-s.Done()
						}
						close(msg.Done)
					}()
				}
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) start(code string) *session.Session {
	s := session.NewSession(h.ctx, engine.NewState(h.cfg.Rules, nil), session.Options{
		Code:     code,
		Timing:   h.cfg.Timing,
		Logger:   h.cfg.Logger,
		Recorder: h.cfg.Recorder,
	})
	h.sessions[code] = s
	h.log.Info("session created", zap.String("session", code))
	return s
}
