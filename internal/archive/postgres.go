package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const createGamesTable = `CREATE TABLE IF NOT EXISTS court_games (
	game_id       TEXT PRIMARY KEY,
	board         TEXT NOT NULL,
	white_id      TEXT NOT NULL,
	white_name    TEXT NOT NULL,
	black_id      TEXT NOT NULL,
	black_name    TEXT NOT NULL,
	result        TEXT NOT NULL,
	result_method TEXT NOT NULL,
	moves_uci     TEXT NOT NULL,
	moves_san     TEXT NOT NULL,
	pgn           TEXT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	ended_at      TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL
)`

const createEndedAtIndex = `CREATE INDEX IF NOT EXISTS court_games_ended_at_idx
	ON court_games (ended_at DESC)`

// Postgres stores records in the court_games table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(databaseURL string) (*Postgres, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// EnsureSchema creates the table and index when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createGamesTable); err != nil {
		return fmt.Errorf("create court_games: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, createEndedAtIndex); err != nil {
		return fmt.Errorf("create court_games index: %w", err)
	}
	return nil
}

// Save upserts the record by game id.
func (p *Postgres) Save(ctx context.Context, rec Record) error {
	if p == nil || p.db == nil {
		return nil
	}

	movesUCIRaw, _ := json.Marshal(rec.MovesUCI)
	movesSANRaw, _ := json.Marshal(rec.MovesSAN)
	duration := rec.EndedAt.Sub(rec.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO court_games (
	    game_id, board, white_id, white_name, black_id, black_name,
	    result, result_method, moves_uci, moves_san, pgn,
	    started_at, ended_at, duration_ms
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
	  ) ON CONFLICT (game_id) DO UPDATE SET
	    board=EXCLUDED.board,
	    white_id=EXCLUDED.white_id,
	    white_name=EXCLUDED.white_name,
	    black_id=EXCLUDED.black_id,
	    black_name=EXCLUDED.black_name,
	    result=EXCLUDED.result,
	    result_method=EXCLUDED.result_method,
	    moves_uci=EXCLUDED.moves_uci,
	    moves_san=EXCLUDED.moves_san,
	    pgn=EXCLUDED.pgn,
	    started_at=EXCLUDED.started_at,
	    ended_at=EXCLUDED.ended_at,
	    duration_ms=EXCLUDED.duration_ms`

	_, err := p.db.ExecContext(ctx, q,
		rec.GameID, rec.Board,
		rec.WhiteID, rec.WhiteName,
		rec.BlackID, rec.BlackName,
		rec.Result, strings.TrimSpace(rec.Method),
		string(movesUCIRaw), string(movesSANRaw), rec.PGN,
		rec.StartedAt, rec.EndedAt, duration,
	)
	return err
}

// Recent returns the latest finished matches, newest first.
func (p *Postgres) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT game_id, board, white_id, white_name, black_id, black_name,
	    result, result_method, moves_uci, moves_san, pgn, started_at, ended_at
	  FROM court_games ORDER BY ended_at DESC LIMIT $1`

	rows, err := p.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var movesUCIRaw, movesSANRaw string
		if err := rows.Scan(
			&rec.GameID, &rec.Board,
			&rec.WhiteID, &rec.WhiteName,
			&rec.BlackID, &rec.BlackName,
			&rec.Result, &rec.Method,
			&movesUCIRaw, &movesSANRaw, &rec.PGN,
			&rec.StartedAt, &rec.EndedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(movesUCIRaw), &rec.MovesUCI); err != nil {
			return nil, fmt.Errorf("decode moves_uci for %s: %w", rec.GameID, err)
		}
		if err := json.Unmarshal([]byte(movesSANRaw), &rec.MovesSAN); err != nil {
			return nil, fmt.Errorf("decode moves_san for %s: %w", rec.GameID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
