package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/platform/retry"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/rotation"
)

// catalogRetry covers catalog reads, which happen outside the rotation
// cadence. Only network-level trouble is retried; a rejected or unauthorized
// read fails straight back to the caller.
var catalogRetry = retry.Policy{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
	OnRetry: func(attempt int, err error, next time.Duration) {
		slog.Warn("Catalog read failed, retrying", "attempt", attempt, "backoff", next, "error", err)
	},
}

func transientGateway(err error) bool {
	switch domain.GatewayErrorKindOf(err) {
	case domain.GatewayNetwork, domain.GatewayTimeout:
		return true
	default:
		return false
	}
}

// CacheInvalidator drops cached catalog data before a refresh. Nil when no
// cache is configured.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service is the application layer - the only component that references
// multiple domain components. It orchestrates all operator use cases.
type Service struct {
	catalog     domain.CatalogGateway
	sessions    domain.SessionGateway
	apps        domain.ApplicationGateway
	manager     *rotation.Manager
	invalidator CacheInvalidator

	refreshGroup singleflight.Group

	mu     sync.Mutex
	niches map[int]int // accountID -> niche filter chosen at start (0 = all)
}

// NewService creates the application layer service. invalidator may be nil.
func NewService(catalog domain.CatalogGateway, sessions domain.SessionGateway, apps domain.ApplicationGateway, manager *rotation.Manager, invalidator CacheInvalidator) *Service {
	return &Service{
		catalog:     catalog,
		sessions:    sessions,
		apps:        apps,
		manager:     manager,
		invalidator: invalidator,
		niches:      make(map[int]int),
	}
}

// StartLoop begins rotating product sets into the account's live sessions.
// nicheID narrows the rotation to one niche's sets; zero means all sets.
func (s *Service) StartLoop(ctx context.Context, accountID, nicheID int, delay time.Duration) error {
	if err := s.resolveAccount(ctx, accountID); err != nil {
		return err
	}

	sets, err := s.productSetsForNiche(ctx, nicheID)
	if err != nil {
		return err
	}

	if err := s.manager.Start(ctx, accountID, sets, delay); err != nil {
		return err
	}

	s.mu.Lock()
	s.niches[accountID] = nicheID
	s.mu.Unlock()
	return nil
}

// StopLoop stops the account's rotation loop. When clearProducts is set and a
// session is still live, its published product list is emptied as well;
// failure to clear is reported in logs but never blocks the stop.
func (s *Service) StopLoop(ctx context.Context, accountID int, clearProducts bool) error {
	if err := s.manager.Stop(accountID); err != nil {
		return err
	}

	if !clearProducts {
		return nil
	}

	sessionID, err := s.sessions.ActiveSession(ctx, accountID)
	if err != nil || sessionID == "" {
		if err != nil {
			slog.WarnContext(ctx, "Session check for clear-products failed", "account_id", accountID, "error", err)
		}
		return nil
	}
	if err := s.apps.ClearProducts(ctx, accountID, sessionID); err != nil {
		slog.WarnContext(ctx, "Clear products on stop failed", "account_id", accountID, "session_id", sessionID, "error", err)
	}
	return nil
}

// SetDelay updates the inter-tick delay; the wait currently in progress keeps
// its original schedule.
func (s *Service) SetDelay(accountID int, delay time.Duration) {
	s.manager.SetDelay(accountID, delay)
}

// SwitchTo is the manual product-set override (see rotation.Loop.SwitchTo).
func (s *Service) SwitchTo(ctx context.Context, accountID, index int) error {
	return s.manager.SwitchTo(ctx, accountID, index)
}

// Status reports the account's loop snapshot.
func (s *Service) Status(accountID int) domain.LoopStatus {
	return s.manager.Status(accountID)
}

// StatusAll reports every known loop's snapshot.
func (s *Service) StatusAll() []domain.LoopStatus {
	return s.manager.StatusAll()
}

// RefreshProductSets re-reads the catalog and rebuilds every known ledger
// without resetting rotation progress. Concurrent refreshes collapse into one
// catalog read.
func (s *Service) RefreshProductSets(ctx context.Context) error {
	_, err, _ := s.refreshGroup.Do("catalog", func() (any, error) {
		if s.invalidator != nil {
			if err := s.invalidator.Invalidate(ctx); err != nil {
				slog.WarnContext(ctx, "Catalog cache invalidation failed", "error", err)
			}
		}

		sets, err := retry.Do(ctx, catalogRetry, transientGateway, func() ([]domain.ProductSet, error) {
			return s.catalog.ProductSets(ctx)
		})
		if err != nil {
			return nil, fmt.Errorf("catalog refresh failed: %w", err)
		}

		s.mu.Lock()
		filters := make(map[int]int, len(s.niches))
		for accountID, nicheID := range s.niches {
			filters[accountID] = nicheID
		}
		s.mu.Unlock()

		for accountID, nicheID := range filters {
			s.manager.Rebuild(accountID, filterByNiche(sets, nicheID))
		}
		return nil, nil
	})
	return err
}

// ListAccounts lists the member's registered seller accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]domain.ShopeeAccount, error) {
	return s.catalog.ShopeeAccounts(ctx)
}

// ListNiches lists the member's niches.
func (s *Service) ListNiches(ctx context.Context) ([]domain.Niche, error) {
	return s.catalog.Niches(ctx)
}

// ListProductSets lists the member's product sets, items included.
func (s *Service) ListProductSets(ctx context.Context) ([]domain.ProductSet, error) {
	return s.catalog.ProductSets(ctx)
}

func (s *Service) resolveAccount(ctx context.Context, accountID int) error {
	accounts, err := retry.Do(ctx, catalogRetry, transientGateway, func() ([]domain.ShopeeAccount, error) {
		return s.catalog.ShopeeAccounts(ctx)
	})
	if err != nil {
		return fmt.Errorf("account lookup failed: %w", err)
	}
	for _, account := range accounts {
		if account.ID == accountID {
			return nil
		}
	}
	return domain.ErrAccountNotFound
}

func (s *Service) productSetsForNiche(ctx context.Context, nicheID int) ([]domain.ProductSet, error) {
	sets, err := retry.Do(ctx, catalogRetry, transientGateway, func() ([]domain.ProductSet, error) {
		return s.catalog.ProductSets(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("product set lookup failed: %w", err)
	}
	return filterByNiche(sets, nicheID), nil
}

func filterByNiche(sets []domain.ProductSet, nicheID int) []domain.ProductSet {
	if nicheID == 0 {
		return sets
	}
	filtered := make([]domain.ProductSet, 0, len(sets))
	for _, set := range sets {
		if set.NicheID == nicheID {
			filtered = append(filtered, set)
		}
	}
	return filtered
}
