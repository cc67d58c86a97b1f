package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bachatlist/internal/amazon"
	"bachatlist/internal/database"
	"bachatlist/internal/lock"
	"bachatlist/internal/models"
	"bachatlist/internal/notify"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testCreds = amazon.Credentials{AccessKey: "AKID", SecretKey: "secret", PartnerTag: "bachat-21", Region: "in"}

type fakeCatalog struct {
	mu    sync.Mutex
	items map[string]*models.CatalogProduct
	errs  map[string]error
	calls int
}

func (f *fakeCatalog) GetItem(_ context.Context, _ amazon.Credentials, asin string) (*models.CatalogProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if err := f.errs[asin]; err != nil {
		return nil, err
	}
	return f.items[asin], nil
}

type fakeNotifier struct {
	drops []notify.PriceDrop
}

func (f *fakeNotifier) NotifyPriceDrop(_ context.Context, drop notify.PriceDrop) (notify.Report, error) {
	f.drops = append(f.drops, drop)
	return notify.Report{Attempted: 1, Delivered: 1}, nil
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(context.Background(), database.DriverSQLite, filepath.Join(t.TempDir(), "bachatlist.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func price(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

// seed creates a deal and a cached product linked to it.
func seed(t *testing.T, db *database.DB, asin string, current, original decimal.NullDecimal, expired bool) *models.Deal {
	t.Helper()
	ctx := context.Background()

	deal := &models.Deal{
		Title:        "Deal " + asin,
		Slug:         "deal-" + asin,
		Currency:     "INR",
		CurrentPrice: current,
		Status:       models.DealPublished,
		IsExpired:    expired,
	}
	require.NoError(t, db.CreateDeal(ctx, deal))

	_, err := db.UpsertProduct(ctx, models.CatalogProduct{
		ASIN:          asin,
		Title:         "Product " + asin,
		CurrentPrice:  current,
		OriginalPrice: original,
		Currency:      "INR",
	}, &deal.ID)
	require.NoError(t, err)

	return deal
}

func TestSyncAll_MixedBatch(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	seed(t, db, "B0FAIL", price("999"), decimal.NullDecimal{}, false)
	dropDeal := seed(t, db, "B0DROP", price("3499"), price("3999"), true)
	freshDeal := seed(t, db, "B0NEW", decimal.NullDecimal{}, decimal.NullDecimal{}, false)

	catalog := &fakeCatalog{
		items: map[string]*models.CatalogProduct{
			"B0DROP": {ASIN: "B0DROP", Title: "Echo Dot", CurrentPrice: price("2999"), Currency: "INR"},
			"B0NEW":  {ASIN: "B0NEW", Title: "Kindle", CurrentPrice: price("500"), Currency: "INR"},
		},
		errs: map[string]error{"B0FAIL": &amazon.TransportError{Service: "Amazon API", StatusCode: 429, Body: "TooManyRequests"}},
	}
	notifier := &fakeNotifier{}
	syncer := NewSyncer(db, catalog, notifier, lock.NewLocal(), 0, time.Minute, zaptest.NewLogger(t))

	summary, err := syncer.SyncAll(ctx, testCreds)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Success)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.PriceChanges)
	assert.Equal(t, models.StatusPartial, summary.Status)
	require.Len(t, summary.Products, 2)

	require.Len(t, notifier.drops, 1)
	assert.Equal(t, dropDeal.ID, notifier.drops[0].DealID)
	assert.True(t, decimal.RequireFromString("3499").Equal(notifier.drops[0].OldPrice))
	assert.True(t, decimal.RequireFromString("2999").Equal(notifier.drops[0].NewPrice))

	got, err := db.GetDeal(ctx, dropDeal.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2999").Equal(got.CurrentPrice.Decimal))
	assert.False(t, got.IsExpired)
	require.NotNil(t, got.Discount)
	assert.Equal(t, 25, *got.Discount)

	got, err = db.GetDeal(ctx, freshDeal.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("500").Equal(got.CurrentPrice.Decimal))
	assert.Nil(t, got.Discount)

	// the failed item keeps its cached row untouched
	failed, err := db.GetProductByASIN(ctx, "B0FAIL")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("999").Equal(failed.CurrentPrice.Decimal))

	cached, err := db.GetProductByASIN(ctx, "B0DROP")
	require.NoError(t, err)
	assert.Equal(t, "Echo Dot", cached.Title)
	require.NotNil(t, cached.DealID)
	assert.Equal(t, dropDeal.ID, *cached.DealID)

	logs, err := db.ListLogs(ctx, models.LogAmazon, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionSync, logs[0].Action)
	assert.Equal(t, models.StatusPartial, logs[0].Status)
	assert.Equal(t, "Synced 2 products, 1 failed, 1 price drops detected", logs[0].Message)
	require.NotNil(t, logs[0].NetworkID)
	assert.Equal(t, "amazon", *logs[0].NetworkID)
}

func TestSyncAll_KeepsOriginalPriceAcrossRuns(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	deal := seed(t, db, "B0ORIG", price("3499"), price("3999"), false)
	catalog := &fakeCatalog{items: map[string]*models.CatalogProduct{
		"B0ORIG": {ASIN: "B0ORIG", Title: "Echo Dot", CurrentPrice: price("2999"), Currency: "INR"},
	}}
	syncer := NewSyncer(db, catalog, &fakeNotifier{}, lock.NewLocal(), 0, time.Minute, zaptest.NewLogger(t))

	_, err := syncer.SyncAll(ctx, testCreds)
	require.NoError(t, err)

	cached, err := db.GetProductByASIN(ctx, "B0ORIG")
	require.NoError(t, err)
	require.True(t, cached.OriginalPrice.Valid)
	assert.True(t, decimal.RequireFromString("3999").Equal(cached.OriginalPrice.Decimal))

	got, err := db.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Discount)
	assert.Equal(t, 25, *got.Discount)

	catalog.items["B0ORIG"] = &models.CatalogProduct{ASIN: "B0ORIG", Title: "Echo Dot", CurrentPrice: price("1999"), Currency: "INR"}

	_, err = syncer.SyncAll(ctx, testCreds)
	require.NoError(t, err)

	got, err = db.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1999").Equal(got.CurrentPrice.Decimal))
	require.NotNil(t, got.Discount)
	assert.Equal(t, 50, *got.Discount)
}

// dealWriteFailure fails every deal price update.
type dealWriteFailure struct {
	*database.DB
}

func (dealWriteFailure) ApplyPriceUpdate(context.Context, string, database.PriceUpdate) error {
	return errors.New("deal update failed")
}

func TestSyncAll_FailedDealUpdateKeepsCachedPrice(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	seed(t, db, "B0DROP", price("3499"), decimal.NullDecimal{}, false)
	catalog := &fakeCatalog{items: map[string]*models.CatalogProduct{
		"B0DROP": {ASIN: "B0DROP", Title: "Echo Dot", CurrentPrice: price("2999"), Currency: "INR"},
	}}

	broken := NewSyncer(dealWriteFailure{db}, catalog, &fakeNotifier{}, lock.NewLocal(), 0, time.Minute, zaptest.NewLogger(t))
	summary, err := broken.SyncAll(ctx, testCreds)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	cached, err := db.GetProductByASIN(ctx, "B0DROP")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3499").Equal(cached.CurrentPrice.Decimal))

	notifier := &fakeNotifier{}
	summary, err = NewSyncer(db, catalog, notifier, lock.NewLocal(), 0, time.Minute, zaptest.NewLogger(t)).SyncAll(ctx, testCreds)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PriceChanges)
	assert.Len(t, notifier.drops, 1)
}

func TestSyncAll_ProductChangeDetails(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	deal := seed(t, db, "B0DROP", price("3499"), decimal.NullDecimal{}, false)
	catalog := &fakeCatalog{items: map[string]*models.CatalogProduct{
		"B0DROP": {ASIN: "B0DROP", Title: "Echo Dot", CurrentPrice: price("2999"), Currency: "INR"},
	}}
	syncer := NewSyncer(db, catalog, &fakeNotifier{}, lock.NewLocal(), 0, time.Minute, zaptest.NewLogger(t))

	summary, err := syncer.SyncAll(ctx, testCreds)
	require.NoError(t, err)
	require.Len(t, summary.Products, 1)

	change := summary.Products[0]
	assert.Equal(t, "B0DROP", change.ASIN)
	assert.Equal(t, "Product B0DROP", change.Title)
	assert.Equal(t, deal.ID, change.DealID)
	assert.Equal(t, "Deal B0DROP", change.DealTitle)
	assert.True(t, change.OldPrice.Valid)
	assert.Equal(t, models.StatusSuccess, summary.Status)
}

func TestSyncAll_PriceRiseGivesNegativeDiscount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	deal := seed(t, db, "B0UP", price("100"), price("100"), false)
	catalog := &fakeCatalog{items: map[string]*models.CatalogProduct{
		"B0UP": {ASIN: "B0UP", Title: "Cable", CurrentPrice: price("120"), Currency: "INR"},
	}}
	notifier := &fakeNotifier{}
	syncer := NewSyncer(db, catalog, notifier, lock.NewLocal(), 0, time.Minute, zaptest.NewLogger(t))

	summary, err := syncer.SyncAll(ctx, testCreds)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.PriceChanges)
	assert.Empty(t, notifier.drops)

	got, err := db.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Discount)
	assert.Equal(t, -20, *got.Discount)
}

func TestSyncAll_NoPriceCountsAsFailure(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	seed(t, db, "B0NOPRICE", price("100"), decimal.NullDecimal{}, false)
	seed(t, db, "B0GONE", price("100"), decimal.NullDecimal{}, false)
	catalog := &fakeCatalog{items: map[string]*models.CatalogProduct{
		"B0NOPRICE": {ASIN: "B0NOPRICE", Title: "Unavailable"},
	}}
	syncer := NewSyncer(db, catalog, &fakeNotifier{}, lock.NewLocal(), 0, time.Minute, zaptest.NewLogger(t))

	summary, err := syncer.SyncAll(ctx, testCreds)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Success)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, models.StatusFailed, summary.Status)
}

func TestSyncAll_MissingCredentials(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seed(t, db, "B0A", price("100"), decimal.NullDecimal{}, false)

	catalog := &fakeCatalog{}
	syncer := NewSyncer(db, catalog, &fakeNotifier{}, lock.NewLocal(), 0, time.Minute, zaptest.NewLogger(t))

	_, err := syncer.SyncAll(ctx, amazon.Credentials{AccessKey: "AKID", Region: "in"})
	assert.ErrorIs(t, err, amazon.ErrMissingCredentials)
	assert.Zero(t, catalog.calls)

	last, err := db.LastLog(ctx, models.LogAmazon, models.ActionSync)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, last.Status)
}

func TestSyncAll_InProgress(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	locker := lock.NewLocal()
	held, err := locker.TryAcquire(ctx, syncLockName, time.Minute)
	require.NoError(t, err)

	catalog := &fakeCatalog{}
	syncer := NewSyncer(db, catalog, &fakeNotifier{}, locker, 0, time.Minute, zaptest.NewLogger(t))

	_, err = syncer.SyncAll(ctx, testCreds)
	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.Zero(t, catalog.calls)

	require.NoError(t, held.Release(ctx))

	summary, err := syncer.SyncAll(ctx, testCreds)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, summary.Status)
}

type failingLocker struct{}

func (failingLocker) TryAcquire(context.Context, string, time.Duration) (lock.Lock, error) {
	return nil, errors.New("redis: connection refused")
}

func TestSyncAll_LockerError(t *testing.T) {
	syncer := NewSyncer(newTestDB(t), &fakeCatalog{}, &fakeNotifier{}, failingLocker{}, 0, time.Minute, zaptest.NewLogger(t))

	_, err := syncer.SyncAll(context.Background(), testCreds)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSyncInProgress)
}

func TestRunPriceSync_NoActiveConfig(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	syncer := NewSyncer(db, &fakeCatalog{}, &fakeNotifier{}, lock.NewLocal(), 0, time.Minute, zaptest.NewLogger(t))
	m := New(db, syncer, nil, time.Hour, 0, zaptest.NewLogger(t))

	_, err := m.RunPriceSync(ctx)
	assert.ErrorIs(t, err, amazon.ErrNoActiveConfig)

	last, err := db.LastLog(ctx, models.LogAmazon, models.ActionSync)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, last.Status)
	assert.Equal(t, amazon.ErrNoActiveConfig.Error(), last.Message)
}

func TestRunPriceSync_UsesActiveConfig(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, db.SaveAmazonConfig(ctx, &models.AmazonConfig{
		AccessKey: "AKID", SecretKey: "secret", AssociateTag: "bachat-21", Region: "in", Marketplace: "IN", IsActive: true,
	}))
	seed(t, db, "B0A", price("100"), decimal.NullDecimal{}, false)

	catalog := &fakeCatalog{items: map[string]*models.CatalogProduct{
		"B0A": {ASIN: "B0A", Title: "A", CurrentPrice: price("90"), Currency: "INR"},
	}}
	syncer := NewSyncer(db, catalog, &fakeNotifier{}, lock.NewLocal(), 0, time.Minute, zaptest.NewLogger(t))
	m := New(db, syncer, nil, time.Hour, 0, zaptest.NewLogger(t))

	summary, err := m.RunPriceSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PriceChanges)
	assert.Equal(t, 1, catalog.calls)
}

func TestStart_RunsImmediatelyAndStops(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.SaveAmazonConfig(context.Background(), &models.AmazonConfig{
		AccessKey: "AKID", SecretKey: "secret", AssociateTag: "bachat-21", Region: "in", IsActive: true,
	}))
	seed(t, db, "B0A", price("100"), decimal.NullDecimal{}, false)

	catalog := &fakeCatalog{items: map[string]*models.CatalogProduct{
		"B0A": {ASIN: "B0A", Title: "A", CurrentPrice: price("100"), Currency: "INR"},
	}}
	syncer := NewSyncer(db, catalog, &fakeNotifier{}, lock.NewLocal(), 0, time.Minute, zaptest.NewLogger(t))
	m := New(db, syncer, nil, time.Hour, 0, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		catalog.mu.Lock()
		defer catalog.mu.Unlock()
		return catalog.calls == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop")
	}
}
