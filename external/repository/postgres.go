package repository

import (
	"context"
	"errors"
	"time"

	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) UpsertUserByEmail(ctx context.Context, input repository.UpsertUserInput) (*repository.User, error) {
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO users (user_id, email, provider, provider_user_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO NOTHING`,
		input.ID, input.Email, input.IdentityProvider, input.IdentitySubjectID); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, email, provider, provider_user_id, created_at
		 FROM users WHERE email = $1`,
		input.Email)
	return scanUser(row)
}

func (r *PostgresRepository) GetUser(ctx context.Context, userID string) (*repository.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, email, provider, provider_user_id, created_at
		 FROM users WHERE user_id = $1`,
		userID)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	if err := row.Scan(&u.ID, &u.Email, &u.IdentityProvider, &u.IdentitySubjectID, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (id, user_id, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, expires_at, created_at`,
		input.ID, input.UserID, input.ExpiresAt)
	var s repository.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) GetActiveSession(ctx context.Context, token string, now time.Time) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, expires_at, created_at
		 FROM sessions WHERE id = $1 AND expires_at > $2`,
		token, now)
	var s repository.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, token)
	return err
}

func (r *PostgresRepository) SaveCredential(ctx context.Context, input repository.SaveCredentialInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO api_keys (user_id, provider, encrypted_key, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, provider) DO UPDATE
		 SET encrypted_key = EXCLUDED.encrypted_key, updated_at = EXCLUDED.updated_at`,
		input.UserID, string(input.Provider), input.SecretKey)
	return err
}

func (r *PostgresRepository) GetCredential(ctx context.Context, userID string, provider repository.Provider) (*repository.ProviderCredential, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, provider, encrypted_key, updated_at
		 FROM api_keys WHERE user_id = $1 AND provider = $2`,
		userID, string(provider))
	var c repository.ProviderCredential
	var p string
	if err := row.Scan(&c.UserID, &p, &c.SecretKey, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.Provider = repository.Provider(p)
	return &c, nil
}

func (r *PostgresRepository) CreateChannel(ctx context.Context, input repository.CreateChannelInput) (*repository.Channel, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO podcasts (user_id, rss_url, title, image_url, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, rss_url, title, image_url, description, created_at`,
		input.UserID, input.FeedURL, input.Title, input.ImageURL, input.Description)
	var c repository.Channel
	if err := row.Scan(&c.ID, &c.UserID, &c.FeedURL, &c.Title, &c.ImageURL, &c.Description, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) ListChannelsByUser(ctx context.Context, userID string) ([]repository.Channel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, rss_url, title, image_url, description, created_at
		 FROM podcasts WHERE user_id = $1 ORDER BY id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Channel
	for rows.Next() {
		var c repository.Channel
		if err := rows.Scan(&c.ID, &c.UserID, &c.FeedURL, &c.Title, &c.ImageURL, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) DeleteChannel(ctx context.Context, userID string, channelID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM podcasts WHERE id = $1 AND user_id = $2`, channelID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
