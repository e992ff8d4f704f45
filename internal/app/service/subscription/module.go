package subscription

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billhound/billhound/internal/platform/stripeapi"
	"github.com/billhound/billhound/pkg/config"
)

var Module = fx.Options(
	fx.Provide(func(db *gorm.DB, cfg *config.Config, sc *stripeapi.Client, log *zap.SugaredLogger) *Service {
		return NewService(db, cfg, sc, log)
	}),
)
