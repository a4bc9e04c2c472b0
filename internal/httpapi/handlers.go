package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/DoyleJ11/gridclaim/internal/engine"
	"github.com/DoyleJ11/gridclaim/internal/hub"
	"github.com/DoyleJ11/gridclaim/internal/results"
	"github.com/DoyleJ11/gridclaim/internal/session"
	wire "github.com/DoyleJ11/gridclaim/pkg/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	codeLength      = 6
	maxCodeAttempts = 16
	defaultResults  = 10
	maxResults      = 100
)

// ResultLister is the read side of the results archive.
type ResultLister interface {
	Recent(ctx context.Context, code string, limit int) ([]results.GameResult, error)
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	code := make([]byte, codeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func CreateSession(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for range maxCodeAttempts {
			code, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			sess, err := h.Create(r.Context(), code)
			if err != nil {
				http.Error(w, "server shutting down", http.StatusServiceUnavailable)
				return
			}
			if sess == nil {
				log.Debug("collision on code, regenerating", zap.String("code", code))
				continue
			}
			writeJSON(w, http.StatusCreated, struct {
				Code string `json:"code"`
			}{Code: code})
			return
		}
		http.Error(w, "failed to create session", http.StatusServiceUnavailable)
	}
}

type sessionResponse struct {
	Code    string         `json:"code"`
	Version int            `json:"version"`
	Clients int            `json:"clients"`
	State   wire.StateView `json:"state"`
}

func GetSession(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		sess, err := h.Get(r.Context(), code)
		if err != nil {
			http.Error(w, "server shutting down", http.StatusServiceUnavailable)
			return
		}
		if sess == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		views := make(chan session.View, 1)
		if !sess.Send(r.Context(), session.GetState{Reply: views}) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		var v session.View
		select {
		case v = <-views:
		case <-sess.Done():
			http.Error(w, "session not found", http.StatusNotFound)
			return
		case <-r.Context().Done():
			return
		}

		writeJSON(w, http.StatusOK, sessionResponse{
			Code:    code,
			Version: v.Version,
			Clients: v.NumClients,
			State:   engine.Snapshot(v.State),
		})
	}
}

type resultResponse struct {
	WinnerID   string         `json:"winner_id"`
	WinnerName string         `json:"winner_name"`
	Rounds     int            `json:"rounds"`
	Seats      int            `json:"seats"`
	Scores     map[string]int `json:"scores"`
	FinishedAt time.Time      `json:"finished_at"`
}

// ListResults serves the archive for one session code. A nil archive yields an
// empty list.
func ListResults(store ResultLister, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		limit := defaultResults
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = min(n, maxResults)
		}

		out := []resultResponse{}
		if store != nil {
			rows, err := store.Recent(r.Context(), code, limit)
			if err != nil {
				log.Error("listing results failed", zap.String("session", code), zap.Error(err))
				http.Error(w, "failed to list results", http.StatusInternalServerError)
				return
			}
			for _, row := range rows {
				scores, err := row.ScoreMap()
				if err != nil {
					log.Warn("skipping unreadable result", zap.Uint("id", row.ID), zap.Error(err))
					continue
				}
				out = append(out, resultResponse{
					WinnerID:   row.WinnerID,
					WinnerName: row.WinnerName,
					Rounds:     row.Rounds,
					Seats:      row.Seats,
					Scores:     scores,
					FinishedAt: row.FinishedAt,
				})
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
