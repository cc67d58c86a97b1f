package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bachatlist/internal/amazon"
	"bachatlist/internal/database"
	"bachatlist/internal/models"

	"go.uber.org/zap"
)

var (
	ErrMissingASIN     = errors.New("missing required field: asin")
	ErrProductNotFound = errors.New("product not found on Amazon")
	ErrNoCategory      = errors.New("no category found, provide a categoryId or create a category")
)

var amazonNetwork = "amazon"

// Store is the persistence behind the catalog operations.
type Store interface {
	ActiveAmazonConfig(ctx context.Context) (*models.AmazonConfig, error)
	GetProductByASIN(ctx context.Context, asin string) (*models.CatalogProduct, error)
	UpsertProduct(ctx context.Context, p models.CatalogProduct, dealID *string) (*models.CatalogProduct, error)
	LinkProductToDeal(ctx context.Context, asin, dealID string) error
	CreateDeal(ctx context.Context, d *models.Deal) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	FirstCategory(ctx context.Context) (*models.Category, error)
	AppendLog(ctx context.Context, e models.SyncLogEntry) error
	LastLog(ctx context.Context, typ models.LogType, action models.LogAction) (*models.SyncLogEntry, error)
	CountLinkedProducts(ctx context.Context) (int, error)
	CountProductsCheckedSince(ctx context.Context, since time.Time) (int, error)
}

// Catalog is the PA-API surface used here. *amazon.Client satisfies it.
type Catalog interface {
	SearchItems(ctx context.Context, creds amazon.Credentials, params amazon.SearchParams) (*amazon.SearchResult, error)
	GetItem(ctx context.Context, creds amazon.Credentials, asin string) (*models.CatalogProduct, error)
	GetItems(ctx context.Context, creds amazon.Credentials, asins []string) ([]models.CatalogProduct, error)
}

// Service implements the admin catalog operations on top of the product cache.
type Service struct {
	store   Store
	catalog Catalog
	log     *zap.Logger
	now     func() time.Time
}

// New creates the catalog service over store and the PA-API client.
func New(store Store, catalog Catalog, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:   store,
		catalog: catalog,
		log:     log.With(zap.String("component", "catalog")),
		now:     time.Now,
	}
}

// activeConfig returns the active credential set or amazon.ErrNoActiveConfig.
func (s *Service) activeConfig(ctx context.Context) (*models.AmazonConfig, error) {
	cfg, err := s.store.ActiveAmazonConfig(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return nil, amazon.ErrNoActiveConfig
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProductView is a product with its affiliate link.
type ProductView struct {
	models.CatalogProduct
	AffiliateURL string
	Cached       bool
}

// GetProduct serves the cached row when present, otherwise looks the item
// up and caches it.
func (s *Service) GetProduct(ctx context.Context, asin string) (*ProductView, error) {
	const op = "catalog.GetProduct"

	if asin == "" {
		return nil, ErrMissingASIN
	}

	cached, err := s.store.GetProductByASIN(ctx, asin)
	switch {
	case err == nil:
		view := &ProductView{CatalogProduct: *cached, Cached: true}
		if cfg, err := s.activeConfig(ctx); err == nil {
			view.AffiliateURL = amazon.AffiliateURL(asin, cfg.AssociateTag, cfg.Region)
		}
		return view, nil
	case !errors.Is(err, database.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fresh, err := s.catalog.GetItem(ctx, amazon.CredentialsFrom(cfg), asin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if fresh == nil {
		return nil, ErrProductNotFound
	}

	stored, err := s.store.UpsertProduct(ctx, *fresh, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &ProductView{
		CatalogProduct: *stored,
		AffiliateURL:   amazon.AffiliateURL(asin, cfg.AssociateTag, cfg.Region),
	}, nil
}

// SearchView is a page of search hits decorated with affiliate links.
type SearchView struct {
	Items        []ProductView
	TotalResults int
	Page         int
	Region       string
}

// Search runs a keyword search with the active credentials.
func (s *Service) Search(ctx context.Context, params amazon.SearchParams) (*SearchView, error) {
	const op = "catalog.Search"

	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.catalog.SearchItems(ctx, amazon.CredentialsFrom(cfg), params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view := &SearchView{
		Items:        make([]ProductView, 0, len(res.Items)),
		TotalResults: res.TotalResults,
		Page:         res.Page,
		Region:       cfg.Region,
	}
	for _, p := range res.Items {
		view.Items = append(view.Items, ProductView{
			CatalogProduct: p,
			AffiliateURL:   amazon.AffiliateURL(p.ASIN, cfg.AssociateTag, cfg.Region),
		})
	}
	return view, nil
}

// SyncStatus summarises the price sync for the admin dashboard.
type SyncStatus struct {
	LastSync        *models.SyncLogEntry
	TotalLinked     int
	RecentlyChecked int
}

// SyncStatus reports the last price sync batch and the linked product counters.
func (s *Service) SyncStatus(ctx context.Context) (*SyncStatus, error) {
	const op = "catalog.SyncStatus"

	status := &SyncStatus{}

	last, err := s.store.LastLog(ctx, models.LogAmazon, models.ActionSync)
	switch {
	case err == nil:
		status.LastSync = last
	case !errors.Is(err, database.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if status.TotalLinked, err = s.store.CountLinkedProducts(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if status.RecentlyChecked, err = s.store.CountProductsCheckedSince(ctx, s.now().Add(-24*time.Hour)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return status, nil
}

func (s *Service) appendLog(ctx context.Context, action models.LogAction, status models.LogStatus, message string) {
	err := s.store.AppendLog(context.WithoutCancel(ctx), models.SyncLogEntry{
		NetworkID: &amazonNetwork,
		Type:      models.LogAmazon,
		Action:    action,
		Status:    status,
		Message:   message,
	})
	if err != nil {
		s.log.Error("failed to write log entry", zap.Error(err))
	}
}
