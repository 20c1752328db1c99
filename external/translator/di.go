package translator

import (
	"net/http"

	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/translator"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (translator.Translator, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewDeepLTranslator(DeepLConfig{
			BaseURL:    c.DeepLBaseURL,
			SourceLang: c.TranslationSourceLang,
			TargetLang: c.TranslationTargetLang,
			Client:     &http.Client{Timeout: c.ProviderRequestTimeout},
		}), nil
	})
}
