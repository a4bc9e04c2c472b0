package results

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GameResult is one finished game. Scores holds a JSON object of seat key to
// owned cells at the moment the winner was declared.
type GameResult struct {
	ID          uint   `gorm:"primaryKey"`
	SessionCode string `gorm:"size:16;index"`
	WinnerID    string `gorm:"size:64"`
	WinnerName  string `gorm:"size:64"`
	Rounds      int
	Seats       int
	Scores      string
	FinishedAt  time.Time `gorm:"index"`
}

func NewGameResult(code, winnerID, winnerName string, rounds int, scores map[string]int, at time.Time) (GameResult, error) {
	raw, err := json.Marshal(scores)
	if err != nil {
		return GameResult{}, fmt.Errorf("encode scores: %w", err)
	}
	return GameResult{
		SessionCode: code,
		WinnerID:    winnerID,
		WinnerName:  winnerName,
		Rounds:      rounds,
		Seats:       len(scores),
		Scores:      string(raw),
		FinishedAt:  at.UTC(),
	}, nil
}

func (r GameResult) ScoreMap() (map[string]int, error) {
	scores := map[string]int{}
	if r.Scores == "" {
		return scores, nil
	}
	if err := json.Unmarshal([]byte(r.Scores), &scores); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	return scores, nil
}

type Store struct {
	db *gorm.DB
}

// Open connects to postgres for postgres:// DSNs and treats anything else as
// a sqlite database path.
func Open(dsn string) (*Store, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	if err := db.AutoMigrate(&GameResult{}); err != nil {
		return nil, fmt.Errorf("migrate results db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, r GameResult) error {
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return fmt.Errorf("record result for %s: %w", r.SessionCode, err)
	}
	return nil
}

// Recent returns up to limit results for a session, newest first.
func (s *Store) Recent(ctx context.Context, code string, limit int) ([]GameResult, error) {
	var out []GameResult
	err := s.db.WithContext(ctx).
		Where("session_code = ?", code).
		Order("finished_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list results for %s: %w", code, err)
	}
	return out, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
