package extractor

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/billhound/billhound/internal/platform/llm"
)

var Module = fx.Options(
	fx.Provide(func(c *llm.Client, log *zap.SugaredLogger) *Service {
		return NewService(c, log)
	}),
)
