package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/foxseedlab/kikitori/internal/identity"
	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

type Store interface {
	repository.UserRepository
	repository.SessionRepository
	repository.CredentialRepository
}

type Service struct {
	store      Store
	provider   identity.Provider
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(store Store, provider identity.Provider, sessionTTL time.Duration, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, provider: provider, sessionTTL: sessionTTL, now: now}
}

// BeginLogin returns an unguessable OAuth state value and the URL to redirect to.
func (s *Service) BeginLogin() (state, redirectURL string) {
	state = uuid.NewString()
	return state, s.provider.AuthCodeURL(state)
}

// CompleteLogin verifies the code with the identity provider, finds or creates
// the user by email and opens a new session.
func (s *Service) CompleteLogin(ctx context.Context, code string) (*repository.Session, error) {
	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	user, err := s.store.UpsertUserByEmail(ctx, repository.UpsertUserInput{
		ID:                uuid.NewString(),
		Email:             strings.ToLower(strings.TrimSpace(profile.Email)),
		IdentityProvider:  profile.Provider,
		IdentitySubjectID: profile.SubjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	session, err := s.store.CreateSession(ctx, repository.CreateSessionInput{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	slog.Info("user logged in", "user_id", user.ID)
	return session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, token)
}

type APIKeys struct {
	Deepgram string `json:"deepgram"`
	DeepL    string `json:"deepl"`
}

type UserInfo struct {
	UserID string  `json:"userId"`
	Email  string  `json:"email"`
	APIKey APIKeys `json:"apiKey"`
}

// UserInfo returns the account with its provider keys masked.
func (s *Service) UserInfo(ctx context.Context, userID string) (*UserInfo, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	info := &UserInfo{UserID: user.ID, Email: user.Email}
	if info.APIKey.Deepgram, err = s.maskedKey(ctx, userID, repository.ProviderSpeechToText); err != nil {
		return nil, err
	}
	if info.APIKey.DeepL, err = s.maskedKey(ctx, userID, repository.ProviderTranslation); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Service) maskedKey(ctx context.Context, userID string, provider repository.Provider) (string, error) {
	c, err := s.store.GetCredential(ctx, userID, provider)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", nil
	}
	return MaskKey(c.SecretKey), nil
}

// SaveAPIKeys replaces the keys that are non-empty in keys and leaves the rest.
func (s *Service) SaveAPIKeys(ctx context.Context, userID string, keys APIKeys) error {
	for provider, key := range map[repository.Provider]string{
		repository.ProviderSpeechToText: keys.Deepgram,
		repository.ProviderTranslation:  keys.DeepL,
	} {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if err := s.store.SaveCredential(ctx, repository.SaveCredentialInput{UserID: userID, Provider: provider, SecretKey: key}); err != nil {
			return fmt.Errorf("save %s key: %w", provider, err)
		}
	}
	return nil
}

// MaskKey keeps the last four characters visible.
func MaskKey(key string) string {
	const visible = 4
	r := []rune(key)
	if len(r) <= visible {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-visible) + string(r[len(r)-visible:])
}
