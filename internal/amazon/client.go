package amazon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bachatlist/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	targetSearchItems = "com.amazon.paapi.v2020-08-26.SearchItems"
	targetGetItems    = "com.amazon.paapi.v2020-08-26.GetItems"

	searchItemCount = 10
	// MaxItemIDs is the PA-API limit of ItemIds per GetItems call.
	MaxItemIDs = 10
)

var (
	searchResources = []string{
		"BrowseNodeInfo.BrowseNodes",
		"BrowseNodeInfo.BrowseNodes.Ancestor",
		"BrowseNodeInfo.BrowseNodes.SalesRank",
		"Images.Primary.Small",
		"Images.Primary.Medium",
		"Images.Primary.Large",
		"Images.Variants.Small",
		"Images.Variants.Medium",
		"Images.Variants.Large",
		"ItemInfo.Title",
		"ItemInfo.Features",
		"ItemInfo.ProductInfo",
		"ItemInfo.TechnicalInfo",
		"Offers.Listings.Price",
		"Offers.Listings.DeliveryInfo.IsPrimeEligible",
		"Offers.Summaries.LowestPrice",
		"Offers.Summaries.HighestPrice",
		"Offers.Summaries.OfferCount",
		"ParentASIN",
	}

	itemResources = []string{
		"BrowseNodeInfo.BrowseNodes",
		"BrowseNodeInfo.BrowseNodes.Ancestor",
		"BrowseNodeInfo.BrowseNodes.SalesRank",
		"Images.Primary.Small",
		"Images.Primary.Medium",
		"Images.Primary.Large",
		"Images.Variants.Small",
		"Images.Variants.Medium",
		"Images.Variants.Large",
		"ItemInfo.Title",
		"ItemInfo.Features",
		"ItemInfo.ProductInfo",
		"ItemInfo.TechnicalInfo",
		"ItemInfo.ManufactureInfo",
		"ItemInfo.ContentInfo",
		"ItemInfo.ContentRating",
		"ItemInfo.Classifications",
		"Offers.Listings.Price",
		"Offers.Listings.DeliveryInfo.IsPrimeEligible",
		"Offers.Summaries.LowestPrice",
		"Offers.Summaries.HighestPrice",
		"Offers.Summaries.OfferCount",
		"ParentASIN",
		"SalesRank",
	}

	batchResources = []string{
		"Images.Primary.Small",
		"Images.Primary.Medium",
		"Images.Primary.Large",
		"ItemInfo.Title",
		"ItemInfo.Features",
		"Offers.Listings.Price",
		"Offers.Summaries.LowestPrice",
	}
)

// Credentials is one PA-API credential set.
type Credentials struct {
	AccessKey  string
	SecretKey  string
	PartnerTag string
	Region     string
}

// CredentialsFrom converts a stored config into a credential set.
func CredentialsFrom(cfg *models.AmazonConfig) Credentials {
	if cfg == nil {
		return Credentials{}
	}
	return Credentials{
		AccessKey:  cfg.AccessKey,
		SecretKey:  cfg.SecretKey,
		PartnerTag: cfg.AssociateTag,
		Region:     cfg.Region,
	}
}

// Validate returns ErrMissingCredentials when a key or the partner tag is empty.
func (c Credentials) Validate() error {
	if c.AccessKey == "" || c.SecretKey == "" || c.PartnerTag == "" {
		return ErrMissingCredentials
	}
	return nil
}

type SortBy string

const (
	SortRelevance      SortBy = "Relevance"
	SortPriceHighToLow SortBy = "Price:HighToLow"
	SortPriceLowToHigh SortBy = "Price:LowToHigh"
	SortAvgReviews     SortBy = "AvgCustomerReviews"
	SortNewestArrivals SortBy = "NewestArrivals"
	SortFeatured       SortBy = "Featured"
)

// SearchParams are the keyword search options.
type SearchParams struct {
	Keywords string
	Category string
	Page     int
	SortBy   SortBy
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// SearchResult is one page of normalised search hits.
type SearchResult struct {
	Items        []models.CatalogProduct
	TotalResults int
	Page         int
}

// Client issues signed PA-API requests.
type Client struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
	log        *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBaseURL sends every request to url instead of the regional host.
// The signed host header still names the regional host.
func WithBaseURL(url string) Option {
	return func(cl *Client) { cl.baseURL = strings.TrimRight(url, "/") }
}

// WithClock overrides the signing clock.
func WithClock(now func() time.Time) Option {
	return func(cl *Client) { cl.now = now }
}

// NewClient creates a PA-API client.
func NewClient(log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
		log:        log,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type priceBound struct {
	Amount       decimal.Decimal `json:"Amount"`
	CurrencyCode string          `json:"CurrencyCode"`
}

type priceRange struct {
	MinimumPrice *priceBound `json:"MinimumPrice,omitempty"`
	MaximumPrice *priceBound `json:"MaximumPrice,omitempty"`
}

type searchItemsRequest struct {
	Keywords    string      `json:"Keywords"`
	SearchIndex string      `json:"SearchIndex"`
	ItemCount   int         `json:"ItemCount"`
	ItemPage    int         `json:"ItemPage"`
	SortBy      SortBy      `json:"SortBy,omitempty"`
	PriceRange  *priceRange `json:"PriceRange,omitempty"`
	Resources   []string    `json:"Resources"`
	PartnerTag  string      `json:"PartnerTag"`
	PartnerType string      `json:"PartnerType"`
	Marketplace string      `json:"Marketplace"`
}

type getItemsRequest struct {
	ItemIDs     []string `json:"ItemIds"`
	ItemIDType  string   `json:"ItemIdType"`
	Resources   []string `json:"Resources"`
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Marketplace string   `json:"Marketplace"`
}

// SearchItems runs a keyword search and returns one page of products.
func (c *Client) SearchItems(ctx context.Context, creds Credentials, params SearchParams) (*SearchResult, error) {
	const op = "amazon.SearchItems"

	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Keywords) == "" {
		return nil, ErrEmptyKeywords
	}

	locale := LocaleFor(creds.Region)
	page := params.Page
	if page < 1 {
		page = 1
	}

	req := searchItemsRequest{
		Keywords:    params.Keywords,
		SearchIndex: SearchIndex(params.Category),
		ItemCount:   searchItemCount,
		ItemPage:    page,
		Resources:   searchResources,
		PartnerTag:  creds.PartnerTag,
		PartnerType: "Associates",
		Marketplace: locale.Marketplace,
	}
	if params.SortBy != "" && params.SortBy != SortRelevance {
		req.SortBy = params.SortBy
	}
	if params.MinPrice != nil || params.MaxPrice != nil {
		req.PriceRange = &priceRange{}
		if params.MinPrice != nil {
			req.PriceRange.MinimumPrice = &priceBound{Amount: *params.MinPrice, CurrencyCode: locale.Currency}
		}
		if params.MaxPrice != nil {
			req.PriceRange.MaximumPrice = &priceBound{Amount: *params.MaxPrice, CurrencyCode: locale.Currency}
		}
	}

	var resp response
	if err := c.do(ctx, creds, targetSearchItems, req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &SearchResult{Page: page}
	if resp.SearchResult != nil {
		result.Items = ParseItems(resp.SearchResult.Items, creds.Region)
		result.TotalResults = resp.SearchResult.TotalResultCount
	}
	return result, nil
}

// GetItem looks up a single ASIN. It returns nil without error when the
// response holds no usable item.
func (c *Client) GetItem(ctx context.Context, creds Credentials, asin string) (*models.CatalogProduct, error) {
	const op = "amazon.GetItem"

	if err := creds.Validate(); err != nil {
		return nil, err
	}

	var resp response
	if err := c.do(ctx, creds, targetGetItems, c.itemsRequest(creds, []string{asin}, itemResources), &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if resp.ItemsResult != nil && len(resp.ItemsResult.Items) > 0 {
		if p, ok := ParseItem(resp.ItemsResult.Items[0], creds.Region); ok {
			return &p, nil
		}
		return nil, nil
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%s: %w", op, &APIError{Details: resp.Errors})
	}
	return nil, nil
}

// GetItems looks up several ASINs, MaxItemIDs per request, sequentially.
func (c *Client) GetItems(ctx context.Context, creds Credentials, asins []string) ([]models.CatalogProduct, error) {
	const op = "amazon.GetItems"

	if err := creds.Validate(); err != nil {
		return nil, err
	}

	var products []models.CatalogProduct
	for start := 0; start < len(asins); start += MaxItemIDs {
		end := min(start+MaxItemIDs, len(asins))

		var resp response
		if err := c.do(ctx, creds, targetGetItems, c.itemsRequest(creds, asins[start:end], batchResources), &resp); err != nil {
			return products, fmt.Errorf("%s: %w", op, err)
		}
		if resp.ItemsResult != nil {
			products = append(products, ParseItems(resp.ItemsResult.Items, creds.Region)...)
		}
	}
	return products, nil
}

func (c *Client) itemsRequest(creds Credentials, asins []string, resources []string) getItemsRequest {
	return getItemsRequest{
		ItemIDs:     asins,
		ItemIDType:  "ASIN",
		Resources:   resources,
		PartnerTag:  creds.PartnerTag,
		PartnerType: "Associates",
		Marketplace: LocaleFor(creds.Region).Marketplace,
	}
}

func (c *Client) do(ctx context.Context, creds Credentials, target string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	locale := LocaleFor(creds.Region)
	base := c.baseURL
	if base == "" {
		base = "https://" + locale.Host
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+apiPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Host = locale.Host
	req.Header.Set("Content-Encoding", "amz-1.0")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-Amz-Target", target)
	req.Header.Set("X-Amz-Access-Token", creds.AccessKey)
	signRequest(req, body, creds.AccessKey, creds.SecretKey, locale.SigningRegion, c.now())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	c.log.Debug("pa-api request",
		zap.String("target", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Service: "Amazon PA-API", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return json.Unmarshal(respBody, out)
}
