package feed

import (
	"net/http"

	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/feed"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (feed.Fetcher, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewGofeedFetcher(&http.Client{Timeout: c.ProviderRequestTimeout}), nil
	})
}
