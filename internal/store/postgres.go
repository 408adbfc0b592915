package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// PostgresStore implements BetStore, RatingStore, and WalletSink on a
// single Postgres database, so a settlement commits the bet status flip
// and the wallet credit in one transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool against the DSN
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Migrate creates the schema when it does not exist yet
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS bets (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			round_id         TEXT NOT NULL,
			seed             BIGINT NOT NULL,
			selections       JSONB NOT NULL,
			stake            DOUBLE PRECISION NOT NULL,
			potential_payout DOUBLE PRECISION NOT NULL,
			mode             TEXT NOT NULL,
			is_bonus_bet     BOOLEAN NOT NULL DEFAULT FALSE,
			status           TEXT NOT NULL DEFAULT 'pending',
			ratings_snapshot JSONB NOT NULL,
			payout           DOUBLE PRECISION NOT NULL DEFAULT 0,
			placed_at        TIMESTAMPTZ NOT NULL,
			settled_at       TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bets_round_status ON bets (round_id, status)`,
		`CREATE TABLE IF NOT EXISTS team_ratings (
			team_id          TEXT PRIMARY KEY,
			current_form     DOUBLE PRECISION NOT NULL,
			volatility_index DOUBLE PRECISION NOT NULL,
			matches_played   INTEGER NOT NULL DEFAULT 0,
			wins             INTEGER NOT NULL DEFAULT 0,
			last_updated     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS wallet_ledger (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			amount     DOUBLE PRECISION NOT NULL,
			partition  TEXT NOT NULL,
			reference  TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wallet_ledger_user ON wallet_ledger (user_id)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// GetBet loads a bet by id, or ErrBetNotFound
func (s *PostgresStore) GetBet(ctx context.Context, betID string) (*models.Bet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, round_id, seed, selections, stake, potential_payout,
		       mode, is_bonus_bet, status, ratings_snapshot, payout, placed_at, settled_at
		FROM bets WHERE id = $1
	`, betID)

	bet, err := scanBet(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", contracts.ErrBetNotFound, betID)
	}
	if err != nil {
		return nil, fmt.Errorf("query bet: %w", err)
	}
	return bet, nil
}

// ListPendingBets returns every pending bet on the round
func (s *PostgresStore) ListPendingBets(ctx context.Context, roundID string) ([]*models.Bet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, round_id, seed, selections, stake, potential_payout,
		       mode, is_bonus_bet, status, ratings_snapshot, payout, placed_at, settled_at
		FROM bets WHERE round_id = $1 AND status = 'pending'
		ORDER BY placed_at
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("query pending bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

// CreateBet inserts a new pending bet with its placement snapshot
func (s *PostgresStore) CreateBet(ctx context.Context, bet *models.Bet) error {
	selections, err := json.Marshal(bet.Selections)
	if err != nil {
		return fmt.Errorf("marshal selections: %w", err)
	}
	snapshot, err := json.Marshal(bet.RatingsSnapshot)
	if err != nil {
		return fmt.Errorf("marshal ratings snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bets (
			id, user_id, round_id, seed, selections, stake, potential_payout,
			mode, is_bonus_bet, status, ratings_snapshot, placed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, bet.ID, bet.UserID, bet.RoundID, bet.Seed, selections, bet.Stake,
		bet.PotentialPayout, bet.Mode, bet.IsBonusBet, models.StatusPending,
		snapshot, bet.PlacedAt)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}
	return nil
}

// FinalizeBet settles one bet atomically. The bet row is locked with
// FOR UPDATE; concurrent settle attempts queue on the lock and the
// losers see the committed status, so the wallet is credited exactly
// once no matter how many retries race.
func (s *PostgresStore) FinalizeBet(ctx context.Context, betID string, decide func(bet *models.Bet) (*contracts.BetSettlement, error)) (*contracts.BetSettlement, bool, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, user_id, round_id, seed, selections, stake, potential_payout,
		       mode, is_bonus_bet, status, ratings_snapshot, payout, placed_at, settled_at
		FROM bets WHERE id = $1 FOR UPDATE
	`, betID)

	bet, err := scanBet(row)
	if err == sql.ErrNoRows {
		return nil, false, fmt.Errorf("%w: %s", contracts.ErrBetNotFound, betID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("lock bet: %w", err)
	}

	// Idempotency: already settled returns the recorded result
	if bet.Status != models.StatusPending {
		return &contracts.BetSettlement{Status: bet.Status, Payout: bet.Payout}, false, nil
	}

	settlement, err := decide(bet)
	if err != nil {
		return nil, false, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bets SET status = $1, payout = $2, settled_at = NOW() WHERE id = $3
	`, settlement.Status, settlement.Payout, betID)
	if err != nil {
		return nil, false, fmt.Errorf("update bet: %w", err)
	}

	if settlement.Credit != nil {
		c := settlement.Credit
		_, err = tx.ExecContext(ctx, `
			INSERT INTO wallet_ledger (id, user_id, amount, partition, reference)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), c.UserID, c.Amount, c.Partition, c.Reference)
		if err != nil {
			return nil, false, fmt.Errorf("insert wallet credit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit settlement: %w", err)
	}

	return settlement, true, nil
}

// GetRating loads a team rating, returning the lazy default for an
// unknown team without persisting it
func (s *PostgresStore) GetRating(ctx context.Context, teamID string) (models.TeamRating, error) {
	var r models.TeamRating
	err := s.db.QueryRowContext(ctx, `
		SELECT team_id, current_form, volatility_index, matches_played, wins, last_updated
		FROM team_ratings WHERE team_id = $1
	`, teamID).Scan(&r.TeamID, &r.CurrentForm, &r.VolatilityIndex, &r.MatchesPlayed, &r.Wins, &r.LastUpdated)

	if err == sql.ErrNoRows {
		return models.NewDefaultRating(teamID), nil
	}
	if err != nil {
		return models.TeamRating{}, fmt.Errorf("query rating: %w", err)
	}
	return r, nil
}

// GetRatings resolves a batch of team ids in input order
func (s *PostgresStore) GetRatings(ctx context.Context, teamIDs []string) ([]models.TeamRating, error) {
	out := make([]models.TeamRating, len(teamIDs))
	for i, id := range teamIDs {
		r, err := s.GetRating(ctx, id)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// UpdateRating serializes the read-modify-write on the team's row.
// The row is created with defaults first so the lock always has a row
// to take; a team appearing in several simultaneous fixtures never
// loses an update.
func (s *PostgresStore) UpdateRating(ctx context.Context, teamID string, apply func(r *models.TeamRating) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO team_ratings (team_id, current_form, volatility_index, last_updated)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (team_id) DO NOTHING
	`, teamID, models.DefaultForm, models.DefaultVolatility)
	if err != nil {
		return fmt.Errorf("ensure rating row: %w", err)
	}

	var r models.TeamRating
	err = tx.QueryRowContext(ctx, `
		SELECT team_id, current_form, volatility_index, matches_played, wins, last_updated
		FROM team_ratings WHERE team_id = $1 FOR UPDATE
	`, teamID).Scan(&r.TeamID, &r.CurrentForm, &r.VolatilityIndex, &r.MatchesPlayed, &r.Wins, &r.LastUpdated)
	if err != nil {
		return fmt.Errorf("lock rating row: %w", err)
	}

	if err := apply(&r); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE team_ratings
		SET current_form = $1, volatility_index = $2, matches_played = $3,
		    wins = $4, last_updated = $5
		WHERE team_id = $6
	`, r.CurrentForm, r.VolatilityIndex, r.MatchesPlayed, r.Wins, r.LastUpdated, teamID)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}

	return tx.Commit()
}

// Credit appends a wallet credit outside a settlement transaction
func (s *PostgresStore) Credit(ctx context.Context, credit models.WalletCredit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallet_ledger (id, user_id, amount, partition, reference)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New().String(), credit.UserID, credit.Amount, credit.Partition, credit.Reference)
	if err != nil {
		return fmt.Errorf("insert wallet credit: %w", err)
	}
	return nil
}

// Balance sums the ledger per partition for one user
func (s *PostgresStore) Balance(ctx context.Context, userID string) (cash, locked float64, err error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT partition, COALESCE(SUM(amount), 0)
		FROM wallet_ledger WHERE user_id = $1
		GROUP BY partition
	`, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("query balance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var partition string
		var amount float64
		if err := rows.Scan(&partition, &amount); err != nil {
			return 0, 0, fmt.Errorf("scan balance: %w", err)
		}
		switch models.WalletPartition(partition) {
		case models.PartitionCash:
			cash = amount
		case models.PartitionLocked:
			locked = amount
		}
	}
	return cash, locked, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBet reads one bet row, unmarshalling the JSON columns
func scanBet(row rowScanner) (*models.Bet, error) {
	var bet models.Bet
	var selections, snapshot []byte
	var settledAt sql.NullTime

	err := row.Scan(&bet.ID, &bet.UserID, &bet.RoundID, &bet.Seed, &selections,
		&bet.Stake, &bet.PotentialPayout, &bet.Mode, &bet.IsBonusBet, &bet.Status,
		&snapshot, &bet.Payout, &bet.PlacedAt, &settledAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(selections, &bet.Selections); err != nil {
		return nil, fmt.Errorf("unmarshal selections: %w", err)
	}
	if err := json.Unmarshal(snapshot, &bet.RatingsSnapshot); err != nil {
		return nil, fmt.Errorf("unmarshal ratings snapshot: %w", err)
	}
	if settledAt.Valid {
		bet.SettledAt = &settledAt.Time
	}

	return &bet, nil
}
