package transcriber

import (
	"net/http"

	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcriber.Transcriber, error) {
		c := do.MustInvoke[*config.Config](i)
		client := &http.Client{Timeout: c.ProviderRequestTimeout}
		if c.TranscriptionProvider == config.TranscriptionProviderGoogleSpeech {
			return NewCloudSpeechTranscriber(CloudSpeechConfig{
				ProjectID:     c.GoogleCloudProjectID,
				Language:      c.TranscribeLanguage,
				Location:      c.GoogleCloudSpeechLocation,
				Model:         c.GoogleCloudSpeechModel,
				MaxAudioBytes: c.GoogleSpeechMaxAudioBytes,
				Client:        client,
			}), nil
		}
		return NewDeepgramTranscriber(DeepgramConfig{
			BaseURL: c.DeepgramBaseURL,
			Model:   c.DeepgramModel,
			Client:  client,
		}), nil
	})
}
