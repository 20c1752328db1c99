package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	TranscriptionProviderDeepgram     = "deepgram"
	TranscriptionProviderGoogleSpeech = "google_speech"

	ArtifactBackendSupabase = "supabase"
	ArtifactBackendSQLite   = "sqlite"
)

type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string
	FrontendURL string

	SessionCookieName string
	SessionTTL        time.Duration
	CookieSecure      bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	TranscriptionProvider     string
	DeepgramBaseURL           string
	DeepgramModel             string
	GoogleCloudProjectID      string
	GoogleCloudSpeechLocation string
	GoogleCloudSpeechModel    string
	GoogleSpeechMaxAudioBytes int64
	TranscribeLanguage        string
	DeepLBaseURL              string
	TranslationSourceLang     string
	TranslationTargetLang     string
	ProviderRequestTimeout    time.Duration
	PipelineTimeout           time.Duration
	ArtifactBackend           string
	SupabaseURL               string
	SupabaseServiceKey        string
	SupabaseBucket            string
	SQLiteArtifactPath        string
	TranscriptWebhookURL      string
	DiscordToken              string
	DiscordNotifyChannelID    string
	DiscordShowPoweredBy      bool
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_SECONDS must be positive, got %s", c.SessionTTL)
	}
	if c.PipelineTimeout <= 0 {
		return fmt.Errorf("PIPELINE_TIMEOUT must be positive, got %s", c.PipelineTimeout)
	}
	if c.ProviderRequestTimeout <= 0 {
		return fmt.Errorf("PROVIDER_REQUEST_TIMEOUT must be positive, got %s", c.ProviderRequestTimeout)
	}
	switch c.TranscriptionProvider {
	case TranscriptionProviderDeepgram:
	case TranscriptionProviderGoogleSpeech:
		if c.GoogleCloudProjectID == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT_ID is required when TRANSCRIPTION_PROVIDER=%s", TranscriptionProviderGoogleSpeech)
		}
		if c.GoogleSpeechMaxAudioBytes <= 0 {
			return fmt.Errorf("GOOGLE_SPEECH_MAX_AUDIO_BYTES must be positive, got %d", c.GoogleSpeechMaxAudioBytes)
		}
	default:
		return fmt.Errorf("TRANSCRIPTION_PROVIDER must be %q or %q, got %q", TranscriptionProviderDeepgram, TranscriptionProviderGoogleSpeech, c.TranscriptionProvider)
	}
	switch c.ArtifactBackend {
	case ArtifactBackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" || c.SupabaseBucket == "" {
			return fmt.Errorf("SUPABASE_URL, SUPABASE_SERVICE_KEY and SUPABASE_BUCKET are required when ARTIFACT_BACKEND=%s", ArtifactBackendSupabase)
		}
	case ArtifactBackendSQLite:
		if c.SQLiteArtifactPath == "" {
			return fmt.Errorf("SQLITE_ARTIFACT_PATH is required when ARTIFACT_BACKEND=%s", ArtifactBackendSQLite)
		}
	default:
		return fmt.Errorf("ARTIFACT_BACKEND must be %q or %q, got %q", ArtifactBackendSupabase, ArtifactBackendSQLite, c.ArtifactBackend)
	}
	if err := validateLanguage("TRANSLATION_SOURCE_LANG", c.TranslationSourceLang); err != nil {
		return err
	}
	if err := validateLanguage("TRANSLATION_TARGET_LANG", c.TranslationTargetLang); err != nil {
		return err
	}
	if (c.DiscordToken == "") != (c.DiscordNotifyChannelID == "") {
		return fmt.Errorf("DISCORD_TOKEN and DISCORD_NOTIFY_CHANNEL_ID must be set together")
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "HTTP_ADDR", value: c.HTTPAddr},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "FRONTEND_URL", value: c.FrontendURL},
		{name: "SESSION_COOKIE_NAME", value: c.SessionCookieName},
		{name: "GOOGLE_CLIENT_ID", value: c.GoogleClientID},
		{name: "GOOGLE_CLIENT_SECRET", value: c.GoogleClientSecret},
		{name: "GOOGLE_REDIRECT_URI", value: c.GoogleRedirectURI},
		{name: "TRANSLATION_SOURCE_LANG", value: c.TranslationSourceLang},
		{name: "TRANSLATION_TARGET_LANG", value: c.TranslationTargetLang},
	}
}

// validateLanguage accepts DeepL style codes such as "EN", "JA" or "EN-GB".
func validateLanguage(name, value string) error {
	if _, err := language.Parse(strings.ToLower(value)); err != nil {
		return fmt.Errorf("%s is not a valid language code: %w", name, err)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != "" && c.DiscordNotifyChannelID != ""
}
