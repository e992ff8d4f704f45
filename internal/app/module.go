package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/billhound/billhound/internal/app/api/server"
	"github.com/billhound/billhound/internal/app/service/billsvc"
	"github.com/billhound/billhound/internal/app/service/dedupe"
	"github.com/billhound/billhound/internal/app/service/extractor"
	"github.com/billhound/billhound/internal/app/service/ingest"
	"github.com/billhound/billhound/internal/app/service/mailscan"
	"github.com/billhound/billhound/internal/app/service/prefs"
	"github.com/billhound/billhound/internal/app/service/reminder"
	"github.com/billhound/billhound/internal/app/service/statistics"
	"github.com/billhound/billhound/internal/app/service/subscription"
	"github.com/billhound/billhound/internal/app/service/webhooklog"
	"github.com/billhound/billhound/internal/platform/db"
	"github.com/billhound/billhound/internal/platform/gmailapi"
	"github.com/billhound/billhound/internal/platform/llm"
	"github.com/billhound/billhound/internal/platform/mailer"
	"github.com/billhound/billhound/internal/platform/stripeapi"
	"github.com/billhound/billhound/pkg/config"
	"github.com/billhound/billhound/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,

	gmailapi.Module,
	llm.Module,
	stripeapi.Module,
	mailer.Module,

	prefs.Module,
	billsvc.Module,
	mailscan.Module,
	extractor.Module,
	ingest.Module,
	dedupe.Module,
	reminder.Module,
	subscription.Module,
	statistics.Module,
	webhooklog.Module,
)
