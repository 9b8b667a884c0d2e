// Package livestate keeps snapshots of in-progress games in redis so a
// restart can reseat them. One snapshot per board, refreshed on every
// mutation and deleted when the game ends.
package livestate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quietbay/chesscourt/internal/domain"
)

// ttlSnapshot guards against snapshots leaking when a delete is missed.
const ttlSnapshot = 7 * 24 * time.Hour

// Snapshot is everything needed to rebuild a live game.
type Snapshot struct {
	GameID     string                            `json:"game_id"`
	Board      string                            `json:"board"`
	White      domain.Player                     `json:"white"`
	Black      domain.Player                     `json:"black"`
	MovesUCI   []string                          `json:"moves_uci"`
	Promotions map[domain.Color]domain.PieceType `json:"promotions,omitempty"`
	StartedAt  time.Time                         `json:"started_at"`
	SavedAt    time.Time                         `json:"saved_at"`
}

type Store struct{ rdb *redis.Client }

func NewStore(redisURL string) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func (s *Store) keyBoard(board string) string { return "court:live:" + strings.TrimSpace(board) }
func (s *Store) keyIndex() string             { return "court:live:index" }

// Save stores the snapshot under its board and indexes the board name.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	if strings.TrimSpace(snap.Board) == "" {
		return fmt.Errorf("snapshot board is required")
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.keyBoard(snap.Board), raw, ttlSnapshot).Err(); err != nil {
		return err
	}
	return s.rdb.SAdd(ctx, s.keyIndex(), snap.Board).Err()
}

// Load returns the board's snapshot, or nil when none exists.
func (s *Store) Load(ctx context.Context, board string) (*Snapshot, error) {
	raw, err := s.rdb.Get(ctx, s.keyBoard(board)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Delete removes the board's snapshot and its index entry.
func (s *Store) Delete(ctx context.Context, board string) error {
	if err := s.rdb.Del(ctx, s.keyBoard(board)).Err(); err != nil {
		return err
	}
	return s.rdb.SRem(ctx, s.keyIndex(), board).Err()
}

// LoadAll returns every stored snapshot, dropping index entries whose
// snapshot has expired.
func (s *Store) LoadAll(ctx context.Context) ([]Snapshot, error) {
	boards, err := s.rdb.SMembers(ctx, s.keyIndex()).Result()
	if err != nil {
		return nil, err
	}
	var out []Snapshot
	for _, board := range boards {
		snap, err := s.Load(ctx, board)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			_ = s.rdb.SRem(ctx, s.keyIndex(), board).Err()
			continue
		}
		out = append(out, *snap)
	}
	return out, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
