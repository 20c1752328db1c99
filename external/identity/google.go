package identity

import (
	"context"
	"fmt"

	"github.com/foxseedlab/kikitori/internal/identity"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

const googleProviderName = "google"

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type tokenExchanger interface {
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
}

type idTokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type GoogleProvider struct {
	clientID string
	oauth    tokenExchanger
	validate idTokenValidator
}

func NewGoogleProvider(cfg GoogleConfig) identity.Provider {
	return &GoogleProvider{
		clientID: cfg.ClientID,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		validate: idtoken.Validate,
	}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*identity.Profile, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", identity.ErrInvalidLogin)
	}
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %w", identity.ErrInvalidLogin, err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("%w: token response has no id_token", identity.ErrInvalidLogin)
	}
	payload, err := p.validate(ctx, raw, p.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: validate id_token: %w", identity.ErrInvalidLogin, err)
	}
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: id_token has no email", identity.ErrInvalidLogin)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("%w: email is not verified", identity.ErrInvalidLogin)
	}
	return &identity.Profile{
		Provider:  googleProviderName,
		SubjectID: payload.Subject,
		Email:     email,
	}, nil
}
