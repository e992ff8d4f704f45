package mailscan

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/billhound/billhound/internal/platform/gmailapi"
)

var Module = fx.Options(
	fx.Provide(func(c *gmailapi.Client, log *zap.SugaredLogger) *Service {
		return NewService(c, log)
	}),
)
