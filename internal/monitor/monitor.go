package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bachatlist/internal/amazon"
	"bachatlist/internal/database"
	"bachatlist/internal/models"
	"bachatlist/internal/notify"

	"go.uber.org/zap"
)

// ConfigStore yields the active credential set.
type ConfigStore interface {
	ActiveAmazonConfig(ctx context.Context) (*models.AmazonConfig, error)
	AppendLog(ctx context.Context, e models.SyncLogEntry) error
}

// Digester sends the daily new-deal digest.
type Digester interface {
	SendNewDealDigest(ctx context.Context) (notify.Report, error)
}

// Monitor runs the price sync and the deal digest on fixed intervals.
type Monitor struct {
	configs        ConfigStore
	syncer         *Syncer
	digest         Digester
	interval       time.Duration
	digestInterval time.Duration
	log            *zap.Logger
}

// New creates a monitor. A zero digestInterval disables the digest.
func New(configs ConfigStore, syncer *Syncer, digest Digester, interval, digestInterval time.Duration, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		configs:        configs,
		syncer:         syncer,
		digest:         digest,
		interval:       interval,
		digestInterval: digestInterval,
		log:            log.With(zap.String("component", "monitor")),
	}
}

// RunPriceSync loads the active credentials and syncs every linked product.
func (m *Monitor) RunPriceSync(ctx context.Context) (*Summary, error) {
	const op = "monitor.RunPriceSync"

	cfg, err := m.configs.ActiveAmazonConfig(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			err = amazon.ErrNoActiveConfig
		}
		logErr := m.configs.AppendLog(context.WithoutCancel(ctx), models.SyncLogEntry{
			NetworkID: &amazonNetwork,
			Type:      models.LogAmazon,
			Action:    models.ActionSync,
			Status:    models.StatusFailed,
			Message:   err.Error(),
		})
		if logErr != nil {
			m.log.Error("failed to write sync log", zap.Error(logErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m.syncer.SyncAll(ctx, amazon.CredentialsFrom(cfg))
}

// Start runs a price sync immediately and then on every interval until ctx
// is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	m.log.Info("monitor started",
		zap.Duration("interval", m.interval),
		zap.Duration("digest_interval", m.digestInterval),
	)

	m.syncPrices(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var digestC <-chan time.Time
	if m.digest != nil && m.digestInterval > 0 {
		digestTicker := time.NewTicker(m.digestInterval)
		defer digestTicker.Stop()
		digestC = digestTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			m.log.Info("monitor stopped")
			return
		case <-ticker.C:
			m.syncPrices(ctx)
		case <-digestC:
			m.sendDigest(ctx)
		}
	}
}

func (m *Monitor) syncPrices(ctx context.Context) {
	if _, err := m.RunPriceSync(ctx); err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			m.log.Info("skipping scheduled sync, another one is running")
			return
		}
		m.log.Error("scheduled price sync failed", zap.Error(err))
	}
}

func (m *Monitor) sendDigest(ctx context.Context) {
	report, err := m.digest.SendNewDealDigest(ctx)
	if err != nil {
		m.log.Error("deal digest failed", zap.Error(err))
		return
	}
	m.log.Info("deal digest sent", zap.Int("delivered", report.Delivered), zap.Int("failed", report.Failed))
}
