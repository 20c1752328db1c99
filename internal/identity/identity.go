package identity

import (
	"context"
	"errors"
)

var ErrInvalidLogin = errors.New("identity provider rejected login")

// Profile is the verified identity returned by the provider.
type Profile struct {
	Provider  string
	SubjectID string
	Email     string
}

type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}
