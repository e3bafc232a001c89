package domain

import (
	"context"
	"time"
)

// AppService is the operator-facing application surface consumed by the HTTP
// server. Implemented by the app package.
type AppService interface {
	StartLoop(ctx context.Context, accountID, nicheID int, delay time.Duration) error
	StopLoop(ctx context.Context, accountID int, clearProducts bool) error
	SetDelay(accountID int, delay time.Duration)
	SwitchTo(ctx context.Context, accountID, index int) error
	Status(accountID int) LoopStatus
	StatusAll() []LoopStatus
	RefreshProductSets(ctx context.Context) error
	ListAccounts(ctx context.Context) ([]ShopeeAccount, error)
	ListNiches(ctx context.Context) ([]Niche, error)
	ListProductSets(ctx context.Context) ([]ProductSet, error)
}
