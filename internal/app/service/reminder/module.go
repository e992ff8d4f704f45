package reminder

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billhound/billhound/internal/platform/mailer"
)

var Module = fx.Options(
	fx.Provide(func(db *gorm.DB, m *mailer.Client, log *zap.SugaredLogger) *Service {
		return NewService(db, m, log)
	}),
)
