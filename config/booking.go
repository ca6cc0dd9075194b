package config

import (
	"fmt"
	"strings"
	"time"
)

// DuplicatePolicy decides whether a user may book the same property twice.
type DuplicatePolicy string

const (
	// DuplicatePolicyAllow leaves duplicate handling to the backend.
	DuplicatePolicyAllow DuplicatePolicy = "allow"
	// DuplicatePolicyReject refuses a new attempt once the user holds a confirmed booking for the property.
	DuplicatePolicyReject DuplicatePolicy = "reject"
)

// UnmarshalText implements encoding.TextUnmarshaler for DuplicatePolicy.
func (p *DuplicatePolicy) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "allow", "reject":
		*p = DuplicatePolicy(v)
		return nil
	default:
		return fmt.Errorf("invalid DuplicatePolicy: %q (valid options: allow, reject)", v)
	}
}

// BookingConfig controls viewing bookings and the gateway checkout.
type BookingConfig struct {
	// AppointmentFee is the fixed viewing fee in rupees, shown on the detail screen.
	AppointmentFee int64  `env:"APPOINTMENT_FEE" envDefault:"1000"`
	Currency       string `env:"CURRENCY"        envDefault:"INR"`

	MerchantName  string `env:"MERCHANT_NAME"  envDefault:"Teji Property Dealer"`
	MerchantImage string `env:"MERCHANT_IMAGE" envDefault:"https://placehold.co/100x100/6366F1/FFFFFF?text=TPD"`
	ThemeColor    string `env:"THEME_COLOR"    envDefault:"#3B82F6"`

	// SlotTTL caps how long an abandoned attempt can block a (user, property) pair.
	SlotTTL time.Duration `env:"SLOT_TTL" envDefault:"30m"`
	// VerifyTimeout bounds the payment verification call, which is never cancelled by the client.
	VerifyTimeout time.Duration `env:"VERIFY_TIMEOUT" envDefault:"20s"`
	// AttemptRetention keeps finished attempts readable so the client can fetch their notice.
	AttemptRetention time.Duration `env:"ATTEMPT_RETENTION" envDefault:"15m"`

	DuplicatePolicy DuplicatePolicy `env:"DUPLICATE_POLICY" envDefault:"allow"`

	// RatePerMinute and RateBurst limit booking initiations per user.
	RatePerMinute int `env:"RATE_PER_MINUTE" envDefault:"10"`
	RateBurst     int `env:"RATE_BURST"      envDefault:"3"`
}

// Sanitize applies guardrails to booking configuration values.
func (b *BookingConfig) Sanitize() {
	if b.AppointmentFee <= 0 {
		b.AppointmentFee = 1000
	}
	if b.Currency = strings.ToUpper(strings.TrimSpace(b.Currency)); b.Currency == "" {
		b.Currency = "INR"
	}
	if b.SlotTTL < time.Minute {
		b.SlotTTL = time.Minute
	}
	if b.VerifyTimeout <= 0 {
		b.VerifyTimeout = 20 * time.Second
	}
	if b.AttemptRetention < time.Minute {
		b.AttemptRetention = time.Minute
	}
	if b.DuplicatePolicy == "" {
		b.DuplicatePolicy = DuplicatePolicyAllow
	}
	if b.RatePerMinute <= 0 {
		b.RatePerMinute = 10
	}
	if b.RateBurst <= 0 {
		b.RateBurst = 1
	}
}
