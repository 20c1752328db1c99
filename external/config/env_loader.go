package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/kikitori/internal/config"
)

type envConfig struct {
	Env                       string        `env:"ENV" envDefault:"production"`
	HTTPAddr                  string        `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL               string        `env:"DATABASE_URL,required"`
	FrontendURL               string        `env:"FRONTEND_URL,required"`
	SessionCookieName         string        `env:"SESSION_COOKIE_NAME" envDefault:"session_id"`
	SessionTTLSeconds         int           `env:"SESSION_TTL_SECONDS" envDefault:"604800"`
	CookieSecure              bool          `env:"COOKIE_SECURE" envDefault:"true"`
	GoogleClientID            string        `env:"GOOGLE_CLIENT_ID,required"`
	GoogleClientSecret        string        `env:"GOOGLE_CLIENT_SECRET,required"`
	GoogleRedirectURI         string        `env:"GOOGLE_REDIRECT_URI,required"`
	TranscriptionProvider     string        `env:"TRANSCRIPTION_PROVIDER" envDefault:"deepgram"`
	DeepgramBaseURL           string        `env:"DEEPGRAM_BASE_URL" envDefault:"https://api.deepgram.com"`
	DeepgramModel             string        `env:"DEEPGRAM_MODEL" envDefault:"nova"`
	GoogleCloudProjectID      string        `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudSpeechLocation string        `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel    string        `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"long"`
	GoogleSpeechMaxAudioBytes int64         `env:"GOOGLE_SPEECH_MAX_AUDIO_BYTES" envDefault:"10485760"`
	TranscribeLanguage        string        `env:"TRANSCRIBE_LANGUAGE" envDefault:"en-US"`
	DeepLBaseURL              string        `env:"DEEPL_BASE_URL" envDefault:"https://api-free.deepl.com"`
	TranslationSourceLang     string        `env:"TRANSLATION_SOURCE_LANG" envDefault:"EN"`
	TranslationTargetLang     string        `env:"TRANSLATION_TARGET_LANG" envDefault:"JA"`
	ProviderRequestTimeout    time.Duration `env:"PROVIDER_REQUEST_TIMEOUT" envDefault:"5m"`
	PipelineTimeout           time.Duration `env:"PIPELINE_TIMEOUT" envDefault:"10m"`
	ArtifactBackend           string        `env:"ARTIFACT_BACKEND" envDefault:"supabase"`
	SupabaseURL               string        `env:"SUPABASE_URL"`
	SupabaseServiceKey        string        `env:"SUPABASE_SERVICE_KEY"`
	SupabaseBucket            string        `env:"SUPABASE_BUCKET" envDefault:"transcription-bucket"`
	SQLiteArtifactPath        string        `env:"SQLITE_ARTIFACT_PATH" envDefault:"artifacts.db"`
	TranscriptWebhookURL      string        `env:"TRANSCRIPT_WEBHOOK_URL"`
	DiscordToken              string        `env:"DISCORD_TOKEN"`
	DiscordNotifyChannelID    string        `env:"DISCORD_NOTIFY_CHANNEL_ID"`
	DiscordShowPoweredBy      bool          `env:"DISCORD_SHOW_POWERED_BY" envDefault:"true"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                       raw.Env,
		HTTPAddr:                  raw.HTTPAddr,
		DatabaseURL:               raw.DatabaseURL,
		FrontendURL:               raw.FrontendURL,
		SessionCookieName:         raw.SessionCookieName,
		SessionTTL:                time.Duration(raw.SessionTTLSeconds) * time.Second,
		CookieSecure:              raw.CookieSecure,
		GoogleClientID:            raw.GoogleClientID,
		GoogleClientSecret:        raw.GoogleClientSecret,
		GoogleRedirectURI:         raw.GoogleRedirectURI,
		TranscriptionProvider:     raw.TranscriptionProvider,
		DeepgramBaseURL:           raw.DeepgramBaseURL,
		DeepgramModel:             raw.DeepgramModel,
		GoogleCloudProjectID:      raw.GoogleCloudProjectID,
		GoogleCloudSpeechLocation: raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:    raw.GoogleCloudSpeechModel,
		GoogleSpeechMaxAudioBytes: raw.GoogleSpeechMaxAudioBytes,
		TranscribeLanguage:        raw.TranscribeLanguage,
		DeepLBaseURL:              raw.DeepLBaseURL,
		TranslationSourceLang:     raw.TranslationSourceLang,
		TranslationTargetLang:     raw.TranslationTargetLang,
		ProviderRequestTimeout:    raw.ProviderRequestTimeout,
		PipelineTimeout:           raw.PipelineTimeout,
		ArtifactBackend:           raw.ArtifactBackend,
		SupabaseURL:               raw.SupabaseURL,
		SupabaseServiceKey:        raw.SupabaseServiceKey,
		SupabaseBucket:            raw.SupabaseBucket,
		SQLiteArtifactPath:        raw.SQLiteArtifactPath,
		TranscriptWebhookURL:      raw.TranscriptWebhookURL,
		DiscordToken:              raw.DiscordToken,
		DiscordNotifyChannelID:    raw.DiscordNotifyChannelID,
		DiscordShowPoweredBy:      raw.DiscordShowPoweredBy,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
