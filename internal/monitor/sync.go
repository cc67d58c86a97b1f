package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bachatlist/internal/amazon"
	"bachatlist/internal/database"
	"bachatlist/internal/lock"
	"bachatlist/internal/metrics"
	"bachatlist/internal/models"
	"bachatlist/internal/notify"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const syncLockName = "sync:amazon-prices"

// ErrSyncInProgress is returned when another price sync holds the lock.
var ErrSyncInProgress = errors.New("price sync already in progress")

var amazonNetwork = "amazon"

// Store is the persistence a price sync reads and writes.
type Store interface {
	ListLinkedProducts(ctx context.Context) ([]models.CatalogProduct, error)
	UpsertProduct(ctx context.Context, p models.CatalogProduct, dealID *string) (*models.CatalogProduct, error)
	GetDeal(ctx context.Context, id string) (*models.Deal, error)
	ApplyPriceUpdate(ctx context.Context, dealID string, u database.PriceUpdate) error
	AppendLog(ctx context.Context, e models.SyncLogEntry) error
}

// Catalog looks up a single item. *amazon.Client satisfies it.
type Catalog interface {
	GetItem(ctx context.Context, creds amazon.Credentials, asin string) (*models.CatalogProduct, error)
}

// Notifier is told about every detected price drop.
type Notifier interface {
	NotifyPriceDrop(ctx context.Context, drop notify.PriceDrop) (notify.Report, error)
}

// ProductChange is one synced item as reported back to the caller.
type ProductChange struct {
	ASIN      string              `json:"asin"`
	Title     string              `json:"title"`
	OldPrice  decimal.NullDecimal `json:"oldPrice"`
	NewPrice  decimal.NullDecimal `json:"newPrice"`
	DealID    string              `json:"dealId"`
	DealTitle string              `json:"dealTitle"`
}

// Summary is the outcome of one batch.
type Summary struct {
	Success      int              `json:"success"`
	Failed       int              `json:"failed"`
	PriceChanges int              `json:"priceChanges"`
	Products     []ProductChange  `json:"products"`
	Status       models.LogStatus `json:"status"`
}

// Syncer refreshes the price of every catalog product backing a deal.
type Syncer struct {
	store    Store
	catalog  Catalog
	notifier Notifier
	locker   lock.Locker
	limiter  *rate.Limiter
	lockTTL  time.Duration
	log      *zap.Logger
}

// NewSyncer creates a Syncer issuing at most one lookup per interval.
// A zero interval disables the rate limit.
func NewSyncer(store Store, catalog Catalog, notifier Notifier, locker lock.Locker, interval, lockTTL time.Duration, log *zap.Logger) *Syncer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{
		store:    store,
		catalog:  catalog,
		notifier: notifier,
		locker:   locker,
		limiter:  rate.NewLimiter(limit, 1),
		lockTTL:  lockTTL,
		log:      log.With(zap.String("component", "price-sync")),
	}
}

// SyncAll runs one batch over the linked products. Item failures are counted
// in the summary; only missing credentials, a held lock and store errors
// before the batch starts are returned as errors.
func (s *Syncer) SyncAll(ctx context.Context, creds amazon.Credentials) (*Summary, error) {
	const op = "monitor.SyncAll"

	if err := creds.Validate(); err != nil {
		s.appendLog(ctx, models.StatusFailed, err.Error())
		metrics.SyncRuns.WithLabelValues(string(models.StatusFailed)).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	held, err := s.locker.TryAcquire(ctx, syncLockName, s.lockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, ErrSyncInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := held.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("failed to release sync lock", zap.Error(err))
		}
	}()

	products, err := s.store.ListLinkedProducts(ctx)
	if err != nil {
		s.appendLog(ctx, models.StatusFailed, err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	s.log.Info("price sync started", zap.Int("products", len(products)))

	summary := &Summary{Products: make([]ProductChange, 0, len(products))}
	for _, cached := range products {
		change, dropped, err := s.syncOne(ctx, creds, cached)
		if err != nil {
			summary.Failed++
			metrics.SyncItems.WithLabelValues("failed").Inc()
			s.log.Warn("failed to sync price", zap.String("asin", cached.ASIN), zap.Error(err))
			continue
		}

		summary.Success++
		metrics.SyncItems.WithLabelValues("success").Inc()
		if dropped {
			summary.PriceChanges++
			metrics.PriceDrops.Inc()
		}
		summary.Products = append(summary.Products, change)
	}

	summary.Status = models.BatchStatus(summary.Success, summary.Failed)
	s.appendLog(ctx, summary.Status, fmt.Sprintf("Synced %d products, %d failed, %d price drops detected",
		summary.Success, summary.Failed, summary.PriceChanges))

	metrics.SyncRuns.WithLabelValues(string(summary.Status)).Inc()
	metrics.SyncDuration.Observe(time.Since(start).Seconds())
	s.log.Info("price sync finished",
		zap.Int("success", summary.Success),
		zap.Int("failed", summary.Failed),
		zap.Int("price_drops", summary.PriceChanges),
		zap.Duration("took", time.Since(start)),
	)

	return summary, nil
}

var errNoPrice = errors.New("item has no price")

// syncOne refreshes one product. dropped reports a fresh price below the
// previously cached one.
func (s *Syncer) syncOne(ctx context.Context, creds amazon.Credentials, cached models.CatalogProduct) (ProductChange, bool, error) {
	var change ProductChange

	if cached.DealID == nil {
		return change, false, errors.New("product is not linked to a deal")
	}
	dealID := *cached.DealID

	if err := s.limiter.Wait(ctx); err != nil {
		return change, false, err
	}

	fresh, err := s.catalog.GetItem(ctx, creds, cached.ASIN)
	if err != nil {
		return change, false, err
	}
	if !fresh.HasPrice() {
		return change, false, errNoPrice
	}

	newPrice := fresh.CurrentPrice.Decimal
	update := database.PriceUpdate{CurrentPrice: newPrice}

	original := fresh.OriginalPrice
	if !original.Valid {
		original = cached.OriginalPrice
	}
	if original.Valid {
		if pct, ok := models.DiscountPercent(original.Decimal, newPrice); ok {
			update.Discount = &pct
		}
	}

	dropped := cached.CurrentPrice.Valid && newPrice.LessThan(cached.CurrentPrice.Decimal)
	update.ClearExpired = dropped

	// Deal before cache: a failed deal write keeps the old cached price.
	if err := s.store.ApplyPriceUpdate(ctx, dealID, update); err != nil {
		return change, false, err
	}
	if _, err := s.store.UpsertProduct(ctx, *fresh, &dealID); err != nil {
		return change, false, err
	}

	change = ProductChange{
		ASIN:     cached.ASIN,
		Title:    cached.Title,
		OldPrice: cached.CurrentPrice,
		NewPrice: fresh.CurrentPrice,
		DealID:   dealID,
	}
	if deal, err := s.store.GetDeal(ctx, dealID); err == nil {
		change.DealTitle = deal.Title
	}

	if dropped {
		currency := fresh.Currency
		if currency == "" {
			currency = cached.Currency
		}
		report, err := s.notifier.NotifyPriceDrop(ctx, notify.PriceDrop{
			DealID:   dealID,
			OldPrice: cached.CurrentPrice.Decimal,
			NewPrice: newPrice,
			Currency: currency,
		})
		if err != nil {
			s.log.Error("price drop notification failed", zap.String("deal_id", dealID), zap.Error(err))
		} else {
			s.log.Info("price drop notified",
				zap.String("asin", cached.ASIN),
				zap.Int("delivered", report.Delivered),
				zap.Int("failed", report.Failed),
			)
		}
	}

	return change, dropped, nil
}

func (s *Syncer) appendLog(ctx context.Context, status models.LogStatus, message string) {
	err := s.store.AppendLog(context.WithoutCancel(ctx), models.SyncLogEntry{
		NetworkID: &amazonNetwork,
		Type:      models.LogAmazon,
		Action:    models.ActionSync,
		Status:    status,
		Message:   message,
	})
	if err != nil {
		s.log.Error("failed to write sync log", zap.Error(err))
	}
}
