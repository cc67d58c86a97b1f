package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		name     string
		original string
		current  string
		want     int
		ok       bool
	}{
		{"quarter off", "1000", "750", 25, true},
		{"rounds half away from zero", "200", "199", 1, true},
		{"rounds down", "300", "299", 0, true},
		{"price above original is negative", "100", "120", -20, true},
		{"zero original", "0", "50", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DiscountPercent(decimal.RequireFromString(tt.original), decimal.RequireFromString(tt.current))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBatchStatus(t *testing.T) {
	assert.Equal(t, StatusSuccess, BatchStatus(3, 0))
	assert.Equal(t, StatusSuccess, BatchStatus(0, 0))
	assert.Equal(t, StatusFailed, BatchStatus(0, 2))
	assert.Equal(t, StatusPartial, BatchStatus(2, 1))
}

func TestChannelType_LogType(t *testing.T) {
	assert.Equal(t, LogTelegram, ChannelTelegram.LogType())
	assert.Equal(t, LogSNS, ChannelSNS.LogType())
	assert.Equal(t, LogEmail, ChannelEmail.LogType())
	assert.Equal(t, LogAMQP, ChannelAMQP.LogType())
}
