package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bachatlist/internal/metrics"
	"bachatlist/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	digestWindow = 24 * time.Hour
	digestLimit  = 10
)

// Store is the persistence the dispatcher reads from and logs to.
type Store interface {
	GetDeal(ctx context.Context, id string) (*models.Deal, error)
	ChannelsWithRule(ctx context.Context, kind models.RuleKind) ([]models.ChannelRule, error)
	ListRecentDeals(ctx context.Context, since time.Time, limit int) ([]models.Deal, error)
	AppendLog(ctx context.Context, e models.SyncLogEntry) error
}

// PriceDrop describes one detected drop on a deal.
type PriceDrop struct {
	DealID   string
	OldPrice decimal.Decimal
	NewPrice decimal.Decimal
	Currency string
}

// Report counts delivery attempts.
type Report struct {
	Attempted int
	Delivered int
	Failed    int
}

// Dispatcher fans notifications out to every channel with a matching rule.
type Dispatcher struct {
	store   Store
	senders map[models.ChannelType]Sender
	log     *zap.Logger
	now     func() time.Time
}

// NewDispatcher creates a dispatcher without senders; add them with Register.
func NewDispatcher(store Store, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		store:   store,
		senders: make(map[models.ChannelType]Sender),
		log:     log.With(zap.String("component", "notify")),
		now:     time.Now,
	}
}

// Register sets the sender used for channels of type t.
func (d *Dispatcher) Register(t models.ChannelType, s Sender) {
	d.senders[t] = s
}

// NotifyPriceDrop renders the price-drop rule of every subscribed channel and
// makes one delivery attempt per channel. Delivery failures are logged and
// counted, only store errors are returned.
func (d *Dispatcher) NotifyPriceDrop(ctx context.Context, drop PriceDrop) (Report, error) {
	const op = "notify.NotifyPriceDrop"

	var report Report

	deal, err := d.store.GetDeal(ctx, drop.DealID)
	if err != nil {
		return report, fmt.Errorf("%s: %w", op, err)
	}

	targets, err := d.store.ChannelsWithRule(ctx, models.RulePriceDrop)
	if err != nil {
		return report, fmt.Errorf("%s: %w", op, err)
	}

	currency := drop.Currency
	if currency == "" {
		currency = deal.Currency
	}
	values := Values{
		FieldTitle:        deal.Title,
		FieldOldPrice:     FormatPrice(drop.OldPrice, currency),
		FieldNewPrice:     FormatPrice(drop.NewPrice, currency),
		FieldShortDesc:    deal.ShortDesc,
		FieldAffiliateURL: linkOf(deal),
	}

	for _, target := range targets {
		tmpl := target.Rule.MessageTemplate
		if strings.TrimSpace(tmpl) == "" {
			tmpl = DefaultPriceDropTemplate
		}
		msg := Message{
			Subject:   "Price drop: " + deal.Title,
			Text:      Render(tmpl, values),
			ParseMode: "Markdown",
		}
		success := fmt.Sprintf("Price drop for %q sent to %s", deal.Title, target.Channel.Name)
		d.deliver(ctx, target.Channel, msg, success, &report)
	}

	return report, nil
}

// SendNewDealDigest sends the deals of the last 24 hours to every channel
// with an enabled new-deal rule.
func (d *Dispatcher) SendNewDealDigest(ctx context.Context) (Report, error) {
	const op = "notify.SendNewDealDigest"

	var report Report

	targets, err := d.store.ChannelsWithRule(ctx, models.RuleNewDeal)
	if err != nil {
		return report, fmt.Errorf("%s: %w", op, err)
	}
	if len(targets) == 0 {
		return report, nil
	}

	deals, err := d.store.ListRecentDeals(ctx, d.now().Add(-digestWindow), digestLimit)
	if err != nil {
		return report, fmt.Errorf("%s: %w", op, err)
	}
	if len(deals) == 0 {
		d.log.Info("no new deals for digest")
		return report, nil
	}

	for _, target := range targets {
		tmpl := target.Rule.MessageTemplate
		if strings.TrimSpace(tmpl) == "" {
			tmpl = DefaultNewDealTemplate
		}

		var b strings.Builder
		b.WriteString(digestHeader)
		for _, deal := range deals {
			b.WriteString(Render(tmpl, newDealValues(deal)))
			b.WriteString("\n\n")
		}

		msg := Message{Subject: "Daily deal digest", Text: b.String(), ParseMode: "Markdown"}
		success := fmt.Sprintf("Sent %d deals to %s", len(deals), target.Channel.Name)
		d.deliver(ctx, target.Channel, msg, success, &report)
	}

	return report, nil
}

func newDealValues(deal models.Deal) Values {
	price := "Check Price"
	if deal.CurrentPrice.Valid && !deal.CurrentPrice.Decimal.IsZero() {
		price = FormatPrice(deal.CurrentPrice.Decimal, deal.Currency)
	}
	discount := "N/A"
	if deal.Discount != nil {
		discount = strconv.Itoa(*deal.Discount)
	}
	desc := deal.ShortDesc
	if desc == "" {
		desc = deal.Description
	}
	return Values{
		FieldTitle:        deal.Title,
		FieldPrice:        price,
		FieldDiscount:     discount,
		FieldShortDesc:    desc,
		FieldAffiliateURL: linkOf(&deal),
	}
}

func linkOf(deal *models.Deal) string {
	if deal.AffiliateURL != "" {
		return deal.AffiliateURL
	}
	return deal.ProductURL
}

// deliver makes the single attempt for one channel and records its outcome.
func (d *Dispatcher) deliver(ctx context.Context, ch models.Channel, msg Message, successMsg string, report *Report) {
	report.Attempted++

	err := d.send(ctx, ch, msg)

	entry := models.SyncLogEntry{
		NetworkID: &ch.ID,
		Type:      ch.Type.LogType(),
		Action:    models.ActionNotification,
		Status:    models.StatusSuccess,
		Message:   successMsg,
	}
	if err != nil {
		report.Failed++
		entry.Status = models.StatusFailed
		entry.Message = err.Error()
		d.log.Warn("notification delivery failed",
			zap.String("channel_id", ch.ID),
			zap.String("channel_type", string(ch.Type)),
			zap.Error(err),
		)
	} else {
		report.Delivered++
	}
	metrics.Notifications.WithLabelValues(string(ch.Type), string(entry.Status)).Inc()

	if err := d.store.AppendLog(ctx, entry); err != nil {
		d.log.Error("failed to write notification log", zap.String("channel_id", ch.ID), zap.Error(err))
	}
}

var errNoSender = errors.New("no sender registered for channel type")

func (d *Dispatcher) send(ctx context.Context, ch models.Channel, msg Message) error {
	sender, ok := d.senders[ch.Type]
	if !ok {
		return fmt.Errorf("%w %s", errNoSender, ch.Type)
	}
	return sender.Send(ctx, ch, msg)
}
