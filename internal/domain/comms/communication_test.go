package comms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommunicationSettle(t *testing.T) {
	tests := []struct {
		name                 string
		recipients, sent, ko int
		want                 string
	}{
		{"all delivered", 3, 3, 0, StatusSent},
		{"some failed", 3, 2, 1, StatusPartial},
		{"all failed", 3, 0, 3, StatusFailed},
		{"no recipients", 0, 0, 0, StatusFailed},
		{"interrupted after one", 4, 1, 0, StatusPartial},
		{"interrupted before any", 4, 0, 0, StatusFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Communication{RecipientCount: tc.recipients, SentCount: tc.sent, FailedCount: tc.ko}
			c.Settle()
			assert.Equal(t, tc.want, c.Status)
			assert.Equal(t, tc.recipients, c.SentCount+c.FailedCount)
		})
	}
}
