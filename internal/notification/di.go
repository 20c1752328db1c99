package notification

import (
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/discord"
	"github.com/foxseedlab/kikitori/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		c := do.MustInvoke[*config.Config](i)
		sender := do.MustInvoke[webhook.Sender](i)
		var client discord.Client
		if c.DiscordEnabled() {
			client = do.MustInvoke[discord.Client](i)
		}
		return NewService(Config{
			DiscordChannelID:     c.DiscordNotifyChannelID,
			DiscordShowPoweredBy: c.DiscordShowPoweredBy,
		}, sender, client, nil), nil
	})
}
