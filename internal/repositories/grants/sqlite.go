package grants

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

const schema = `
PRAGMA busy_timeout = 5000;
CREATE TABLE IF NOT EXISTS player_grants (
	session_id         TEXT PRIMARY KEY,
	player_id          TEXT NOT NULL,
	ship               TEXT NOT NULL,
	credits            INTEGER NOT NULL,
	trade_bonus        INTEGER NOT NULL DEFAULT 0,
	reputation_penalty INTEGER NOT NULL DEFAULT 0,
	outcome            TEXT NOT NULL,
	nickname           TEXT,
	granted_at         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_player_grants_player ON player_grants(player_id, granted_at);
`

const selectColumns = `session_id, player_id, ship, credits, trade_bonus, reputation_penalty, outcome, nickname, granted_at`

type sqliteRepository struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the grant ledger at dbPath.
// ":memory:" keeps the ledger in memory for tests.
func NewSQLite(dbPath string) (Repository, error) {
	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, dnderr.Wrapf(err, "create database directory for %s", dbPath)
		}
		dsn = dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, dnderr.Wrap(err, "open grant ledger")
	}

	// One connection keeps ":memory:" a single database and serialises writers
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, dnderr.Wrap(err, "ping grant ledger")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, dnderr.Wrap(err, "create grant schema")
	}

	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) Record(ctx context.Context, grant *firstlogin.PlayerGrant) (*firstlogin.PlayerGrant, bool, error) {
	if err := validate(grant); err != nil {
		return nil, false, err
	}

	var nickname any
	if grant.Nickname != "" {
		nickname = grant.Nickname
	}

	res, err := r.db.ExecContext(ctx, `
	INSERT INTO player_grants (`+selectColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO NOTHING`,
		grant.SessionID, grant.PlayerID, string(grant.Ship), grant.Credits,
		boolToInt(grant.TradeBonus), boolToInt(grant.ReputationPenalty),
		string(grant.Outcome), nickname, grant.GrantedAt.UnixMilli(),
	)
	if err != nil {
		return nil, false, dnderr.Wrapf(err, "record grant for session %s", grant.SessionID).
			WithMeta("session_id", grant.SessionID)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, dnderr.Wrap(err, "read grant insert result")
	}

	stored, err := r.GetBySession(ctx, grant.SessionID)
	if err != nil {
		return nil, false, err
	}
	return stored, affected == 1, nil
}

func (r *sqliteRepository) GetBySession(ctx context.Context, sessionID string) (*firstlogin.PlayerGrant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM player_grants WHERE session_id = ?`, sessionID)

	g, err := scanGrant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dnderr.NotFoundf("no grant for session %s", sessionID).WithMeta("session_id", sessionID)
	}
	if err != nil {
		return nil, dnderr.Wrapf(err, "scan grant for session %s", sessionID)
	}
	return g, nil
}

func (r *sqliteRepository) ListByPlayer(ctx context.Context, playerID string) ([]*firstlogin.PlayerGrant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM player_grants WHERE player_id = ? ORDER BY granted_at`, playerID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "query grants for player %s", playerID)
	}
	defer rows.Close()

	var out []*firstlogin.PlayerGrant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, dnderr.Wrap(err, "scan grant row")
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, dnderr.Wrap(err, "iterate grant rows")
	}
	return out, nil
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGrant(s scanner) (*firstlogin.PlayerGrant, error) {
	var (
		g                 firstlogin.PlayerGrant
		ship, outcome     string
		trade, reputation int
		nickname          sql.NullString
		grantedAt         int64
	)
	if err := s.Scan(&g.SessionID, &g.PlayerID, &ship, &g.Credits, &trade, &reputation,
		&outcome, &nickname, &grantedAt); err != nil {
		return nil, err
	}

	g.Ship = firstlogin.ShipType(ship)
	g.Outcome = firstlogin.OutcomeKind(outcome)
	g.TradeBonus = trade == 1
	g.ReputationPenalty = reputation == 1
	g.Nickname = nickname.String
	g.GrantedAt = time.UnixMilli(grantedAt).UTC()
	return &g, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
