package services

import (
	portsrepo "github.com/SscSPs/ledger_intake/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_intake/internal/core/ports/services"
	"github.com/SscSPs/ledger_intake/internal/platform/config"
)

// NewServiceContainer wires the services around the repositories. The returned
// manager is also stored in the container; callers run its sweeper.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, suggestions portssvc.SuggestionSvc, analytics portssvc.AnalyticsSvc) (*portssvc.ServiceContainer, *SessionManager) {
	container := &portssvc.ServiceContainer{
		Suggestions: suggestions,
		Analytics:   analytics,
	}

	window := DefaultDuplicateWindow()
	if !cfg.Engine.DuplicateAmountTolerance.IsZero() {
		window.AmountTolerance = cfg.Engine.DuplicateAmountTolerance
	}
	if cfg.Engine.DuplicateWindowDays > 0 {
		window.Days = cfg.Engine.DuplicateWindowDays
	}
	if cfg.Engine.DuplicateLookbackDays > 0 {
		window.LookbackDays = cfg.Engine.DuplicateLookbackDays
	}

	container.Persistence = NewLedgerService(repos.TransactionRepo, repos.AccountRepo, WithDuplicateWindow(window))
	container.KnowledgeBase = NewKnowledgeBaseService(repos.CorrectionRepo)
	container.Vocabulary = NewCategoryService(repos.CategoryRepo)

	sessionCfg := SessionConfig{
		FutureDateLimitDays:  cfg.Engine.FutureDateLimitDays,
		SplitAmountThreshold: cfg.Engine.SplitAmountThreshold,
		SplitMerchants:       cfg.Engine.SplitMerchants,
		LineItemAIDebounce:   cfg.Engine.LineItemAIDebounce,
		LookupDebounce:       cfg.Engine.LookupDebounce,
	}
	manager := NewSessionManager(sessionCfg, SessionDeps{
		Persistence:   container.Persistence,
		Suggestions:   container.Suggestions,
		KnowledgeBase: container.KnowledgeBase,
		Vocabulary:    container.Vocabulary,
		Analytics:     container.Analytics,
	}, WithIdleTTL(cfg.Engine.SessionIdleTTL))
	container.Sessions = manager

	return container, manager
}
