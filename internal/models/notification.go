package models

import "time"

type ChannelType string

const (
	ChannelTelegram ChannelType = "TELEGRAM"
	ChannelSNS      ChannelType = "SNS"
	ChannelEmail    ChannelType = "EMAIL"
	ChannelAMQP     ChannelType = "AMQP"
)

// LogType maps a channel to the sync log tag of its delivery attempts.
func (t ChannelType) LogType() LogType {
	switch t {
	case ChannelSNS:
		return LogSNS
	case ChannelEmail:
		return LogEmail
	case ChannelAMQP:
		return LogAMQP
	default:
		return LogTelegram
	}
}

// Channel is a registered notification endpoint. Target holds the chat id,
// topic ARN, e-mail address or queue name depending on Type.
type Channel struct {
	ID        string
	Name      string
	Type      ChannelType
	Token     string
	Target    string
	Active    bool
	CreatedAt time.Time
}

type RuleKind string

const (
	RuleNewDeal   RuleKind = "NEW_DEAL"
	RulePriceDrop RuleKind = "PRICE_DROP"
)

// NotificationRule enables one kind of notification on a channel.
type NotificationRule struct {
	ID              string
	ChannelID       string
	Kind            RuleKind
	Enabled         bool
	MessageTemplate string
}

// ChannelRule is a channel joined with one of its enabled rules.
type ChannelRule struct {
	Channel Channel
	Rule    NotificationRule
}

// AmazonConfig is a stored PA-API credential set. At most one is active.
type AmazonConfig struct {
	ID           string
	AccessKey    string
	SecretKey    string
	AssociateTag string
	Region       string
	Marketplace  string
	IsActive     bool
	UpdatedAt    time.Time
}
