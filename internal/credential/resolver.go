package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foxseedlab/kikitori/internal/repository"
)

var (
	ErrSpeechToTextKeyMissing = errors.New("speech-to-text key not configured")
	ErrTranslationKeyMissing  = errors.New("translation key not configured")
)

// Identity is the caller behind a live session.
type Identity struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

type Store interface {
	GetActiveSession(ctx context.Context, token string, now time.Time) (*repository.Session, error)
	GetCredential(ctx context.Context, userID string, provider repository.Provider) (*repository.ProviderCredential, error)
}

type Resolver struct {
	store Store
	now   func() time.Time
}

func NewResolver(store Store, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{store: store, now: now}
}

// Resolve returns nil without an error when the token is empty, unknown or expired.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}
	s, err := r.store.GetActiveSession(ctx, token, r.now())
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if s == nil {
		return nil, nil
	}
	return &Identity{UserID: s.UserID, SessionID: s.ID, ExpiresAt: s.ExpiresAt}, nil
}

func (r *Resolver) For(identity *Identity) *Keys {
	return &Keys{store: r.store, userID: identity.UserID}
}

// Keys loads the caller's provider credentials on demand.
type Keys struct {
	store  Store
	userID string
}

func (k *Keys) SpeechToTextKey(ctx context.Context) (string, error) {
	return k.load(ctx, repository.ProviderSpeechToText, ErrSpeechToTextKeyMissing)
}

func (k *Keys) TranslationKey(ctx context.Context) (string, error) {
	return k.load(ctx, repository.ProviderTranslation, ErrTranslationKeyMissing)
}

func (k *Keys) load(ctx context.Context, provider repository.Provider, missing error) (string, error) {
	c, err := k.store.GetCredential(ctx, k.userID, provider)
	if err != nil {
		return "", fmt.Errorf("lookup %s credential: %w", provider, err)
	}
	if c == nil || c.SecretKey == "" {
		return "", missing
	}
	return c.SecretKey, nil
}
