package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/amoraapp/ledger/internal/app/api/server"
	"github.com/amoraapp/ledger/internal/app/service/authevents"
	"github.com/amoraapp/ledger/internal/app/service/billing"
	"github.com/amoraapp/ledger/internal/app/service/credits"
	"github.com/amoraapp/ledger/internal/app/service/eventlog"
	"github.com/amoraapp/ledger/internal/app/service/premium"
	"github.com/amoraapp/ledger/internal/app/service/profile"
	"github.com/amoraapp/ledger/internal/app/service/stats"
	"github.com/amoraapp/ledger/internal/app/service/webhook"
	"github.com/amoraapp/ledger/internal/platform/db"
	"github.com/amoraapp/ledger/pkg/config"
	"github.com/amoraapp/ledger/pkg/logger"
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
	profile.Module,
	credits.Module,
	premium.Module,
	billing.Module,
	eventlog.Module,
	webhook.Module,
	authevents.Module,
	stats.Module,
)
