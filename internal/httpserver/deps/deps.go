package deps

import (
	"context"
	"time"

	"github.com/postway/postway/internal/executor"
	"github.com/postway/postway/internal/ledger"
	"github.com/postway/postway/internal/logger"
)

// Pinger reports storage reachability for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is the explicit dependency bag handed to every route registrar.
// Handlers never reach for package-level state.
type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	Development bool // true => error responses carry the underlying detail

	Executor  *executor.Executor
	Ledger    *ledger.Ledger
	Endpoints *ledger.EndpointHistory
	DB        Pinger

	TrustProxy      bool
	RateLimitBurst  int
	RateLimitPerMin int
}
