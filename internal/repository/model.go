package repository

import "time"

type Provider string

const (
	ProviderSpeechToText Provider = "deepgram"
	ProviderTranslation  Provider = "deepl"
)

func (p Provider) Valid() bool {
	return p == ProviderSpeechToText || p == ProviderTranslation
}

type User struct {
	ID                string
	Email             string
	IdentityProvider  string
	IdentitySubjectID string
	CreatedAt         time.Time
}

type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type ProviderCredential struct {
	UserID    string
	Provider  Provider
	SecretKey string
	UpdatedAt time.Time
}

type Channel struct {
	ID          int64
	UserID      string
	FeedURL     string
	Title       string
	ImageURL    string
	Description string
	CreatedAt   time.Time
}
