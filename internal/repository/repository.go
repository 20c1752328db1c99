package repository

import (
	"context"
	"time"
)

type UpsertUserInput struct {
	ID                string
	Email             string
	IdentityProvider  string
	IdentitySubjectID string
}

type CreateSessionInput struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

type SaveCredentialInput struct {
	UserID    string
	Provider  Provider
	SecretKey string
}

type CreateChannelInput struct {
	UserID      string
	FeedURL     string
	Title       string
	ImageURL    string
	Description string
}

type UserRepository interface {
	// UpsertUserByEmail inserts the user unless the email already exists and
	// returns the stored row either way.
	UpsertUserByEmail(ctx context.Context, input UpsertUserInput) (*User, error)
	GetUser(ctx context.Context, userID string) (*User, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	// GetActiveSession returns nil when the token is unknown or expired at now.
	GetActiveSession(ctx context.Context, token string, now time.Time) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type CredentialRepository interface {
	SaveCredential(ctx context.Context, input SaveCredentialInput) error
	// GetCredential returns nil when the user has no key for the provider.
	GetCredential(ctx context.Context, userID string, provider Provider) (*ProviderCredential, error)
}

type ChannelRepository interface {
	CreateChannel(ctx context.Context, input CreateChannelInput) (*Channel, error)
	ListChannelsByUser(ctx context.Context, userID string) ([]Channel, error)
	// DeleteChannel reports whether a row owned by userID was removed.
	DeleteChannel(ctx context.Context, userID string, channelID int64) (bool, error)
}

type Repository interface {
	UserRepository
	SessionRepository
	CredentialRepository
	ChannelRepository
}
