package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransactionMessage(t *testing.T) {
	tests := []struct {
		name   string
		sender string
		body   string
		want   bool
	}{
		{
			name:   "bank sender short-code",
			sender: "HDFCBK",
			body:   "hello",
			want:   true,
		},
		{
			name:   "upi token in body",
			sender: "unknown",
			body:   "Sent via UPI app",
			want:   true,
		},
		{
			name:   "transaction keyword with unknown sender",
			sender: "AX-UNKNWN",
			body:   "Your account was DEBITED today",
			want:   true,
		},
		{
			name:   "bare amount in long message",
			sender: "somebody",
			body:   "you still owe me Rs. 1,200 for the trip",
			want:   true,
		},
		{
			name:   "too short",
			sender: "FRIEND",
			body:   "ok",
			want:   false,
		},
		{
			name:   "promotion with no financial markers",
			sender: "VM-PROMO",
			body:   "Mega sale! 70% off on fashion this weekend.",
			want:   false,
		},
		{
			name:   "otp without currency",
			sender: "VK-OTPSVC",
			body:   "Dear customer, your OTP is 4821",
			want:   false,
		},
		{
			name:   "word ending in rs is not a currency marker",
			sender: "VM-STORE",
			body:   "Open 24 HOURS today, visit us for the grand opening",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransactionMessage(tt.sender, tt.body))
		})
	}
}

func TestIsTransactionMessageDeterministic(t *testing.T) {
	sender, body := "ICICIB", "INR 2,300.00 debited for FUEL PURCHASE at INDIANOIL"
	first := IsTransactionMessage(sender, body)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, IsTransactionMessage(sender, body))
	}
}
