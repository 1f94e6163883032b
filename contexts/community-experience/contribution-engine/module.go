package contributionengine

import (
	"log/slog"
	"time"

	httpadapter "paperportal/contexts/community-experience/contribution-engine/adapters/http"
	"paperportal/contexts/community-experience/contribution-engine/adapters/memory"
	"paperportal/contexts/community-experience/contribution-engine/application/commands"
	"paperportal/contexts/community-experience/contribution-engine/application/queries"
	"paperportal/contexts/community-experience/contribution-engine/domain/scoring"
	"paperportal/contexts/community-experience/contribution-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Ledger         ports.EventLedger
	States         ports.StateRepository
	Idempotency    ports.IdempotencyStore
	Leaderboard    ports.LeaderboardIndex
	Rules          *scoring.RuleTable
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Metrics        ports.Metrics
	CASRetryLimit  int
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	rules := deps.Rules
	if rules == nil {
		rules = scoring.DefaultRuleTable()
	}
	record := commands.RecordUseCase{
		Ledger:         deps.Ledger,
		States:         deps.States,
		Idempotency:    deps.Idempotency,
		Leaderboard:    deps.Leaderboard,
		Rules:          rules,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		Metrics:        deps.Metrics,
		CASRetryLimit:  deps.CASRetryLimit,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	recalculate := &commands.RecalculateUseCase{
		Ledger:      deps.Ledger,
		States:      deps.States,
		Leaderboard: deps.Leaderboard,
		Rules:       rules,
		IDGen:       deps.IDGen,
		Metrics:     deps.Metrics,
		Logger:      deps.Logger,
	}
	contributionQueries := queries.ContributionUseCase{
		States:      deps.States,
		Leaderboard: deps.Leaderboard,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Record:      record,
			Recalculate: recalculate,
			Queries:     contributionQueries,
			Logger:      deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger:         store,
		States:         store,
		Idempotency:    store,
		Leaderboard:    store,
		Clock:          store,
		IDGen:          store,
		IdempotencyTTL: 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
