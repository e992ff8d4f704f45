package ingest

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billhound/billhound/internal/app/service/billsvc"
	"github.com/billhound/billhound/internal/app/service/extractor"
	"github.com/billhound/billhound/internal/app/service/mailscan"
	"github.com/billhound/billhound/internal/app/service/prefs"
	"github.com/billhound/billhound/internal/platform/gmailapi"
)

var Module = fx.Options(
	fx.Provide(func(db *gorm.DB, p *prefs.Service, bills *billsvc.Service, scan *mailscan.Service, ex *extractor.Service, gm *gmailapi.Client, log *zap.SugaredLogger) *Service {
		return NewService(db, p, bills, scan, ex, gm, log)
	}),
)
