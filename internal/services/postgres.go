package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gambleio-server/internal/database"
	"gambleio-server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `username, profile_slug, password_hash, display_name, role, is_owner, is_admin,
	balance, xp, level, total_clicks, total_bets, total_gambling_wins, total_profit_wins,
	total_wins_count, total_click_earnings, biggest_win_amount, biggest_win_multiplier,
	biggest_win_meta, game_net, game_play_counts, xp_by_source, plinko_risk_level,
	plinko_risk_unlocked, chat_muted_until, chat_rules_accepted, created_at, analytics_started_at`

const plinkoStatsID = 1

// PostgresStore persists records in relational tables. UpdateUser locks the
// user row for the duration of the read-modify-write transaction.
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u         models.User
		role      *string
		riskLevel string
	)
	err := row.Scan(
		&u.Username, &u.ProfileSlug, &u.PasswordHash, &u.DisplayName, &role, &u.IsOwner, &u.IsAdmin,
		&u.Balance, &u.XP, &u.Level, &u.TotalClicks, &u.TotalBets, &u.TotalGamblingWins, &u.TotalProfitWins,
		&u.TotalWinsCount, &u.TotalClickEarnings, &u.BiggestWinAmount, &u.BiggestWinMultiplier,
		&u.BiggestWinMeta, &u.GameNet, &u.GamePlayCounts, &u.XPBySource, &riskLevel,
		&u.PlinkoRiskUnlocked, &u.ChatMutedUntil, &u.ChatRulesAccepted, &u.CreatedAt, &u.AnalyticsStartedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if role != nil {
		u.Role = models.Role(*role)
	}
	u.PlinkoRiskLevel = models.RiskLevel(riskLevel)
	return &u, nil
}

func userArgs(u *models.User) []any {
	var role *string
	if u.Role != models.RoleNone {
		r := string(u.Role)
		role = &r
	}
	return []any{
		u.Username, u.ProfileSlug, u.PasswordHash, u.DisplayName, role, u.IsOwner, u.IsAdmin,
		u.Balance, u.XP, u.Level, u.TotalClicks, u.TotalBets, u.TotalGamblingWins, u.TotalProfitWins,
		u.TotalWinsCount, u.TotalClickEarnings, u.BiggestWinAmount, u.BiggestWinMultiplier,
		u.BiggestWinMeta, u.GameNet, u.GamePlayCounts, u.XPBySource, string(u.PlinkoRiskLevel),
		u.PlinkoRiskUnlocked, u.ChatMutedUntil, u.ChatRulesAccepted, u.CreatedAt, u.AnalyticsStartedAt,
	}
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`

	_, err := s.db.Exec(ctx, query, userArgs(user)...)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`,
		models.NormalizeUsername(username))
	return scanUser(row)
}

func (s *PostgresStore) GetUserBySlug(ctx context.Context, slug string) (*models.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(profile_slug) = LOWER($1)`, slug)
	return scanUser(row)
}

func (s *PostgresStore) UpdateUser(ctx context.Context, username string, fn func(*models.User) error) (*models.User, error) {
	var updated *models.User

	err := s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 FOR UPDATE`,
			models.NormalizeUsername(username))
		user, err := scanUser(row)
		if err != nil {
			return err
		}

		if err := fn(user); err != nil {
			return err
		}

		query := `UPDATE users SET
			profile_slug = $2, password_hash = $3, display_name = $4, role = $5, is_owner = $6, is_admin = $7,
			balance = $8, xp = $9, level = $10, total_clicks = $11, total_bets = $12,
			total_gambling_wins = $13, total_profit_wins = $14, total_wins_count = $15,
			total_click_earnings = $16, biggest_win_amount = $17, biggest_win_multiplier = $18,
			biggest_win_meta = $19, game_net = $20, game_play_counts = $21, xp_by_source = $22,
			plinko_risk_level = $23, plinko_risk_unlocked = $24, chat_muted_until = $25,
			chat_rules_accepted = $26, created_at = $27, analytics_started_at = $28
			WHERE username = $1`
		if _, err := tx.Exec(ctx, query, userArgs(user)...); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) CreateSession(ctx context.Context, sessionID, username string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO sessions (session_id, username, created_at) VALUES ($1, $2, $3)`,
		sessionID, models.NormalizeUsername(username), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) SessionUser(ctx context.Context, sessionID string) (string, error) {
	var username string
	err := s.db.QueryRow(ctx, `SELECT username FROM sessions WHERE session_id = $1`, sessionID).Scan(&username)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	return username, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
	return err
}

func (s *PostgresStore) AppendAdminLog(ctx context.Context, e *models.AdminLog) error {
	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO admin_logs (id, type, timestamp, actor_username, actor_display_name,
			target_username, target_display_name, role, adjust_type, value, new_level, previous_level)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			e.ID, string(e.Type), e.Timestamp, e.ActorUsername, e.ActorDisplayName,
			e.TargetUsername, e.TargetDisplayName, e.Role, e.AdjustType, e.Value, e.NewLevel, e.PreviousLevel)
		if err != nil {
			return fmt.Errorf("failed to insert admin log: %w", err)
		}

		_, err = tx.Exec(ctx, `DELETE FROM admin_logs WHERE seq <= (
			SELECT seq FROM admin_logs ORDER BY seq DESC OFFSET $1 LIMIT 1)`, maxAdminLogs)
		return err
	})
}

func (s *PostgresStore) AdminLogs(ctx context.Context, limit int) ([]*models.AdminLog, error) {
	rows, err := s.db.Query(ctx, `SELECT id, type, timestamp,
		COALESCE(actor_username, ''), COALESCE(actor_display_name, ''),
		COALESCE(target_username, ''), COALESCE(target_display_name, ''),
		COALESCE(role, ''), COALESCE(adjust_type, ''), value, new_level, previous_level
		FROM admin_logs ORDER BY seq DESC LIMIT $1`, clampLogLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read admin logs: %w", err)
	}
	defer rows.Close()

	logs := []*models.AdminLog{}
	for rows.Next() {
		var (
			e       models.AdminLog
			logType string
		)
		if err := rows.Scan(&e.ID, &logType, &e.Timestamp, &e.ActorUsername, &e.ActorDisplayName,
			&e.TargetUsername, &e.TargetDisplayName, &e.Role, &e.AdjustType,
			&e.Value, &e.NewLevel, &e.PreviousLevel); err != nil {
			return nil, fmt.Errorf("failed to scan admin log: %w", err)
		}
		e.Type = models.AdminLogType(logType)
		logs = append(logs, &e)
	}
	return logs, rows.Err()
}

func (s *PostgresStore) RecordPlinkoLanding(ctx context.Context, slot int) error {
	if slot < 0 || slot >= models.PlinkoSlots {
		return ErrInvalidInput
	}

	_, err := s.db.Exec(ctx, `INSERT INTO plinko_stats (id, total_balls, landings)
		VALUES ($1, 0, array_fill(0::BIGINT, ARRAY[$2::INTEGER]))
		ON CONFLICT (id) DO NOTHING`, plinkoStatsID, models.PlinkoSlots)
	if err != nil {
		return fmt.Errorf("failed to init plinko stats: %w", err)
	}

	// Postgres arrays are 1-based.
	_, err = s.db.Exec(ctx, `UPDATE plinko_stats
		SET total_balls = total_balls + 1, landings[$2] = landings[$2] + 1
		WHERE id = $1`, plinkoStatsID, slot+1)
	if err != nil {
		return fmt.Errorf("failed to record plinko landing: %w", err)
	}
	return nil
}

func (s *PostgresStore) PlinkoStats(ctx context.Context) (models.PlinkoStats, error) {
	stats := models.NewPlinkoStats()

	var landings []int64
	err := s.db.QueryRow(ctx, `SELECT total_balls, landings FROM plinko_stats WHERE id = $1`, plinkoStatsID).
		Scan(&stats.TotalBalls, &landings)
	if errors.Is(err, pgx.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("failed to read plinko stats: %w", err)
	}
	copy(stats.Landings, landings)
	return stats, nil
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE users, sessions, plinko_stats`); err != nil {
			return fmt.Errorf("failed to reset store: %w", err)
		}
		return nil
	})
}
