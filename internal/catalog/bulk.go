package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"bachatlist/internal/amazon"
	"bachatlist/internal/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var ErrNoASINs = errors.New("no ASINs found in spreadsheet")

var asinPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// LinkResult reports which requested ASINs were cached.
type LinkResult struct {
	Requested int
	Cached    []string
	Missing   []string
	Linked    int
}

type linkRow struct {
	asin   string
	dealID string
}

// BulkLink reads ASINs from the first sheet of an xlsx workbook, looks them
// up in batches and caches the results. A header row naming an "asin"
// column is optional; a "deal_id" column links each product to a deal.
func (s *Service) BulkLink(ctx context.Context, r io.Reader) (*LinkResult, error) {
	const op = "catalog.BulkLink"

	rows, err := readLinkRows(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	asins := make([]string, 0, len(rows))
	for _, row := range rows {
		asins = append(asins, row.asin)
	}

	products, err := s.catalog.GetItems(ctx, amazon.CredentialsFrom(cfg), asins)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	found := make(map[string]models.CatalogProduct, len(products))
	for _, p := range products {
		found[p.ASIN] = p
	}

	res := &LinkResult{Requested: len(rows)}
	for _, row := range rows {
		p, ok := found[row.asin]
		if !ok {
			res.Missing = append(res.Missing, row.asin)
			continue
		}

		var dealID *string
		if row.dealID != "" {
			dealID = &row.dealID
		}
		if _, err := s.store.UpsertProduct(ctx, p, dealID); err != nil {
			s.log.Warn("failed to cache product", zap.String("asin", row.asin), zap.Error(err))
			res.Missing = append(res.Missing, row.asin)
			continue
		}
		res.Cached = append(res.Cached, row.asin)
		if dealID != nil {
			res.Linked++
		}
	}

	s.appendLog(ctx, models.ActionImport, models.BatchStatus(len(res.Cached), len(res.Missing)),
		fmt.Sprintf("Bulk linked %d of %d products, %d missing", len(res.Cached), res.Requested, len(res.Missing)))

	return res, nil
}

// readLinkRows returns the unique, valid ASIN rows of the first sheet.
func readLinkRows(r io.Reader) ([]linkRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	asinCol, dealCol, start := 0, -1, 0
	if len(rows) > 0 {
		for i, cell := range rows[0] {
			switch strings.ToLower(strings.TrimSpace(cell)) {
			case "asin":
				asinCol, start = i, 1
			case "deal_id", "dealid", "deal":
				dealCol = i
			}
		}
		if start == 0 {
			dealCol = -1
		}
	}

	seen := make(map[string]struct{})
	var out []linkRow
	for _, row := range rows[start:] {
		if asinCol >= len(row) {
			continue
		}
		asin := strings.ToUpper(strings.TrimSpace(row[asinCol]))
		if !asinPattern.MatchString(asin) {
			continue
		}
		if _, dup := seen[asin]; dup {
			continue
		}
		seen[asin] = struct{}{}

		lr := linkRow{asin: asin}
		if dealCol >= 0 && dealCol < len(row) {
			lr.dealID = strings.TrimSpace(row[dealCol])
		}
		out = append(out, lr)
	}

	if len(out) == 0 {
		return nil, ErrNoASINs
	}
	return out, nil
}
