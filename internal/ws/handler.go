package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/DoyleJ11/gridclaim/internal/engine"
	"github.com/DoyleJ11/gridclaim/internal/hub"
	"github.com/DoyleJ11/gridclaim/internal/session"
	"github.com/DoyleJ11/gridclaim/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeTimeout = 3 * time.Second
	pingTimeout  = 10 * time.Second
	// Idle clients are only dropped when they stop answering pings.
	defaultPingInterval = 30 * time.Second
	outboxSize          = 32
	maxNameLen          = 24
)

var (
	errBadJSON     = errors.New("bad json")
	errUnknownType = errors.New("unknown type")
	errMissingIdx  = errors.New("missing index")
)

type Options struct {
	// DefaultCode is used when the request carries no code.
	DefaultCode    string
	MsgRate        float64
	MsgBurst       int
	OriginPatterns []string
	PingInterval   time.Duration
	Logger         *zap.Logger
}

func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			code = opts.DefaultCode
		}
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		sess, err := h.Get(r.Context(), code)
		if err != nil {
			http.Error(w, "server shutting down", http.StatusServiceUnavailable)
			return
		}
		if sess == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := log.With(zap.String("session", code), zap.String("client", clientID))
		out := make(chan types.ServerMessage, outboxSize)

		if !sess.Send(r.Context(), session.Join{ClientID: clientID, Name: cleanName(r.URL.Query().Get("name")), Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "session closed")
			return
		}
		defer sess.Send(context.WithoutCancel(r.Context()), session.Leave{ClientID: clientID})
		log.Debug("client connected")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case <-writeCtx.Done():
					return
				case msg, ok := <-out:
					if !ok {
						// The session dropped us or shut down.
						conn.Close(websocket.StatusPolicyViolation, "disconnected by server")
						return
					}
					ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
					err := wsjson.Write(ctx, conn, msg)
					cancel()
					if err != nil {
						conn.Close(websocket.StatusInternalError, "write failed")
						return
					}
				}
			}
		}()

		// Keepalive: a pong arrives through the reader loop below.
		go func() {
			ticker := time.NewTicker(opts.PingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-writeCtx.Done():
					return
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(writeCtx, pingTimeout)
					err := conn.Ping(ctx)
					cancel()
					if err != nil {
						log.Debug("ping failed", zap.Error(err))
						conn.Close(websocket.StatusPolicyViolation, "ping timeout")
						return
					}
				}
			}
		}()

		limiter := rate.NewLimiter(rate.Limit(opts.MsgRate), opts.MsgBurst)

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Debug("client closed")
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return // Leave is sent by the defer
			}

			if opts.MsgRate > 0 && !limiter.Allow() {
				log.Debug("message dropped by rate limit")
				continue
			}

			cmd, err := decode(data)
			if err != nil {
				writeError(r.Context(), conn, err)
				continue
			}
			if !sess.Send(r.Context(), session.FromClient{ClientID: clientID, Cmd: cmd}) {
				return
			}
		}
	}
}

func decode(data []byte) (engine.Command, error) {
	var cm types.ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		return engine.Command{}, errBadJSON
	}
	return toEngineCommand(cm)
}

func toEngineCommand(m types.ClientMessage) (engine.Command, error) {
	switch m.Type {
	case types.MsgConfigureAndStart:
		return engine.Command{
			Type:         engine.CmdConfigureAndStart,
			NumPlayers:   m.NumPlayers,
			RoundSeconds: m.RoundSeconds,
			Computers:    m.Computers,
		}, nil
	case types.MsgPickStartSquare:
		if m.Index == nil {
			return engine.Command{}, errMissingIdx
		}
		return engine.Command{Type: engine.CmdPickStartSquare, Index: *m.Index}, nil
	case types.MsgClaimSquare:
		if m.Index == nil {
			return engine.Command{}, errMissingIdx
		}
		return engine.Command{Type: engine.CmdClaimSquare, Index: *m.Index}, nil
	case types.MsgResetSession:
		return engine.Command{Type: engine.CmdReset}, nil
	default:
		return engine.Command{}, errUnknownType
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, err error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = wsjson.Write(ctx, conn, types.ServerMessage{Type: types.MsgError, Error: err.Error()})
}

func cleanName(name string) string {
	r := []rune(strings.TrimSpace(name))
	if len(r) > maxNameLen {
		r = r[:maxNameLen]
	}
	return string(r)
}
