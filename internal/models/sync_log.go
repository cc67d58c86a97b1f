package models

import "time"

// LogType tags the subsystem that produced a sync log entry.
type LogType string

const (
	LogAmazon   LogType = "AMAZON"
	LogTelegram LogType = "TELEGRAM"
	LogSNS      LogType = "SNS"
	LogEmail    LogType = "EMAIL"
	LogAMQP     LogType = "AMQP"
	LogCuelinks LogType = "CUELINKS"
	LogCron     LogType = "CRON"
)

type LogAction string

const (
	ActionSync          LogAction = "SYNC"
	ActionNotification  LogAction = "NOTIFICATION"
	ActionImport        LogAction = "IMPORT"
	ActionPriceSync     LogAction = "PRICE_SYNC"
	ActionTest          LogAction = "TEST"
	ActionWebhook       LogAction = "WEBHOOK"
	ActionNotifications LogAction = "NOTIFICATIONS"
)

type LogStatus string

const (
	StatusSuccess LogStatus = "SUCCESS"
	StatusPartial LogStatus = "PARTIAL"
	StatusFailed  LogStatus = "FAILED"
)

// BatchStatus derives the status of a batch from its counters:
// SUCCESS without failures, FAILED when nothing succeeded, PARTIAL otherwise.
func BatchStatus(success, failed int) LogStatus {
	switch {
	case failed == 0:
		return StatusSuccess
	case success == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// SyncLogEntry is an append-only audit record.
type SyncLogEntry struct {
	ID        string
	NetworkID *string
	Type      LogType
	Action    LogAction
	Status    LogStatus
	Message   string
	CreatedAt time.Time
}
