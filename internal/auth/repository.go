// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/selfmode/selfmode-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, session *Session) error
	FindByUserAndHash(
		ctx context.Context,
		userID, tokenHash string,
	) (*Session, error)
	DeleteByUserAndHash(ctx context.Context, userID, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID string) error
	ListActiveForUser(ctx context.Context, userID string) ([]Session, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO user_sessions (
			id, user_id, token_hash, expires_at, user_agent, ip_address
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &session.CreatedAt, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.ExpiresAt,
		session.UserAgent,
		session.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *repository) FindByUserAndHash(
	ctx context.Context,
	userID, tokenHash string,
) (*Session, error) {
	query := `
		SELECT
			id, user_id, token_hash, expires_at, created_at,
			user_agent, ip_address
		FROM user_sessions
		WHERE user_id = $1 AND token_hash = $2`

	var session Session
	err := r.db.GetContext(ctx, &session, query, userID, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	return &session, nil
}

func (r *repository) DeleteByUserAndHash(
	ctx context.Context,
	userID, tokenHash string,
) error {
	query := `
		DELETE FROM user_sessions
		WHERE user_id = $1 AND token_hash = $2`

	_, err := r.db.ExecContext(ctx, query, userID, tokenHash)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func (r *repository) DeleteAllForUser(
	ctx context.Context,
	userID string,
) error {
	query := `DELETE FROM user_sessions WHERE user_id = $1`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}

	return nil
}

func (r *repository) ListActiveForUser(
	ctx context.Context,
	userID string,
) ([]Session, error) {
	query := `
		SELECT
			id, user_id, token_hash, expires_at, created_at,
			user_agent, ip_address
		FROM user_sessions
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC`

	var sessions []Session
	err := r.db.SelectContext(ctx, &sessions, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}

	return sessions, nil
}

func (r *repository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM user_sessions WHERE expires_at < NOW()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	return rows, nil
}
