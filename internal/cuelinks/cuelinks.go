package cuelinks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"bachatlist/internal/database"
	"bachatlist/internal/lib/text"
	"bachatlist/internal/metrics"
	"bachatlist/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://www.cuelinks.com/api/v2"

	// India
	countryID       = 252
	perPage         = 100
	defaultLifetime = 30 * 24 * time.Hour
	shortDescLen    = 200

	categoryName = "Cuelinks"
	categorySlug = "cuelinks"
	categoryIcon = "🔗"
)

var ErrMissingAPIKey = errors.New("cuelinks API key not configured")

var cuelinksNetwork = "cuelinks"

// Store is the persistence the importer writes deals to.
type Store interface {
	FindDealByTitleOrURL(ctx context.Context, title, affiliateURL string) (*models.Deal, error)
	CreateDeal(ctx context.Context, d *models.Deal) error
	UpdateDeal(ctx context.Context, d *models.Deal) error
	EnsureCategory(ctx context.Context, name, slug, icon string) (*models.Category, error)
	AppendLog(ctx context.Context, e models.SyncLogEntry) error
}

// Campaign is one entry of the campaigns.json listing.
type Campaign struct {
	ID           json.Number `json:"id"`
	Title        string      `json:"title"`
	Campaign     string      `json:"campaign"`
	Description  string      `json:"description"`
	URL          string      `json:"url"`
	AffiliateURL string      `json:"affiliate_url"`
	CouponCode   string      `json:"coupon_code"`
	ImageURL     string      `json:"image_url"`
	EndDate      string      `json:"end_date"`
}

type campaignsResponse struct {
	Campaigns []Campaign `json:"campaigns"`
}

// ImportResult counts what one sync did.
type ImportResult struct {
	Fetched  int `json:"fetched"`
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Expired  int `json:"expired"`
	Failed   int `json:"failed"`
}

// Importer mirrors Cuelinks campaigns into deals.
type Importer struct {
	store   Store
	client  *http.Client
	baseURL string
	apiKey  string
	log     *zap.Logger
	now     func() time.Time
}

// NewImporter creates an importer. An empty baseURL selects DefaultBaseURL.
func NewImporter(store Store, client *http.Client, baseURL, apiKey string, log *zap.Logger) *Importer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{
		store:   store,
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		log:     log.With(zap.String("component", "cuelinks")),
		now:     time.Now,
	}
}

// Sync fetches the campaign listing and creates, updates or archives deals.
// A failed fetch is logged and returned; per-campaign failures are counted.
func (i *Importer) Sync(ctx context.Context) (*ImportResult, error) {
	const op = "cuelinks.Sync"

	if i.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingAPIKey)
	}

	campaigns, err := i.fetch(ctx)
	if err != nil {
		i.appendLog(ctx, models.StatusFailed, err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := &ImportResult{Fetched: len(campaigns)}
	for _, c := range campaigns {
		outcome, err := i.apply(ctx, c)
		if err != nil {
			res.Failed++
			outcome = "failed"
			i.log.Warn("failed to process campaign", zap.String("campaign_id", c.ID.String()), zap.Error(err))
		}
		switch outcome {
		case "imported":
			res.Imported++
		case "updated":
			res.Updated++
		case "expired":
			res.Expired++
		}
		metrics.CuelinksCampaigns.WithLabelValues(outcome).Inc()
	}

	status := models.StatusSuccess
	if res.Failed > 0 {
		status = models.StatusPartial
	}
	i.appendLog(ctx, status, fmt.Sprintf("Fetched: %d, Imported: %d, Updated: %d, Expired: %d, Failed: %d",
		res.Fetched, res.Imported, res.Updated, res.Expired, res.Failed))

	i.log.Info("cuelinks sync finished",
		zap.Int("fetched", res.Fetched),
		zap.Int("imported", res.Imported),
		zap.Int("updated", res.Updated),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (i *Importer) fetch(ctx context.Context) ([]Campaign, error) {
	url := fmt.Sprintf("%s/campaigns.json?per_page=%d&country_id=%d", i.baseURL, perPage, countryID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token token="+i.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("cuelinks api error: %d", resp.StatusCode)
	}

	var body campaignsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode campaigns: %w", err)
	}
	return body.Campaigns, nil
}

// apply stores one campaign and names what happened to it.
func (i *Importer) apply(ctx context.Context, c Campaign) (string, error) {
	title := campaignTitle(c)
	desc := cleanDescription(c.Description)

	end, err := i.endDate(c.EndDate)
	if err != nil {
		return "", err
	}
	expired := i.now().After(end)

	link := c.AffiliateURL
	if link == "" {
		link = c.URL
	}

	existing, err := i.store.FindDealByTitleOrURL(ctx, title, link)
	switch {
	case err == nil:
		existing.Description = desc
		existing.ShortDesc = text.Truncate(desc, shortDescLen)
		existing.ProductURL = c.URL
		existing.AffiliateURL = c.AffiliateURL
		existing.Coupon = c.CouponCode
		existing.IsExpired = expired
		if expired {
			existing.Status = models.DealArchived
		}
		if err := i.store.UpdateDeal(ctx, existing); err != nil {
			return "", err
		}
		return "updated", nil
	case !errors.Is(err, database.ErrNotFound):
		return "", err
	}

	if expired {
		return "expired", nil
	}

	category, err := i.store.EnsureCategory(ctx, categoryName, categorySlug, categoryIcon)
	if err != nil {
		return "", err
	}

	zero := decimal.NewNullDecimal(decimal.Zero)
	deal := &models.Deal{
		Title:         title,
		Slug:          Slugify(title),
		Description:   desc,
		ShortDesc:     text.Truncate(desc, shortDescLen),
		CurrentPrice:  zero,
		OriginalPrice: zero,
		Currency:      "INR",
		PrimaryImage:  c.ImageURL,
		ProductURL:    c.URL,
		AffiliateURL:  c.AffiliateURL,
		Coupon:        c.CouponCode,
		Status:        models.DealPublished,
		CategoryID:    &category.ID,
		ExpiresAt:     &end,
	}
	if err := i.store.CreateDeal(ctx, deal); err != nil {
		return "", err
	}
	return "imported", nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func (i *Importer) endDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return i.now().Add(defaultLifetime), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid end_date %q", raw)
}

func campaignTitle(c Campaign) string {
	switch {
	case c.Title != "":
		return c.Title
	case c.Campaign != "":
		return c.Campaign
	default:
		return "deal-" + c.ID.String()
	}
}

// cleanDescription reduces campaign HTML to its text with collapsed whitespace.
func cleanDescription(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

var (
	spaces     = regexp.MustCompile(`\s+`)
	slugUnsafe = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify lowercases s, turns whitespace runs into dashes and drops
// everything else outside [a-z0-9-]. Unlike slug.Make it keeps repeated and
// edge dashes, so slugs of deals imported earlier still match.
func Slugify(s string) string {
	s = spaces.ReplaceAllString(strings.ToLower(s), "-")
	return slugUnsafe.ReplaceAllString(s, "")
}

func (i *Importer) appendLog(ctx context.Context, status models.LogStatus, message string) {
	err := i.store.AppendLog(context.WithoutCancel(ctx), models.SyncLogEntry{
		NetworkID: &cuelinksNetwork,
		Type:      models.LogCuelinks,
		Action:    models.ActionSync,
		Status:    status,
		Message:   message,
	})
	if err != nil {
		i.log.Error("failed to write sync log", zap.Error(err))
	}
}
