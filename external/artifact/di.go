package artifact

import (
	"context"

	"github.com/foxseedlab/kikitori/internal/artifact"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (artifact.Store, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.ArtifactBackend == config.ArtifactBackendSQLite {
			return NewSQLiteStore(context.Background(), c.SQLiteArtifactPath)
		}
		return NewSupabaseStore(SupabaseConfig{
			URL:        c.SupabaseURL,
			ServiceKey: c.SupabaseServiceKey,
			Bucket:     c.SupabaseBucket,
		})
	})
}
