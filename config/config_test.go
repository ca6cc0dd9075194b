package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Booking.AppointmentFee != 1000 {
		t.Fatalf("expected fee 1000, got %d", cfg.Booking.AppointmentFee)
	}
	if cfg.Booking.DuplicatePolicy != DuplicatePolicyAllow {
		t.Fatalf("expected allow policy, got %q", cfg.Booking.DuplicatePolicy)
	}
	if cfg.Backend.BaseURL != "http://localhost:8888/api" {
		t.Fatalf("unexpected backend url %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.CatalogCacheTTL != 30*time.Second {
		t.Fatalf("unexpected catalog cache ttl %v", cfg.Backend.CatalogCacheTTL)
	}
	if cfg.Session.ResolveWait != 250*time.Millisecond {
		t.Fatalf("unexpected resolve wait %v", cfg.Session.ResolveWait)
	}
	if cfg.Booking.MerchantName != "Teji Property Dealer" {
		t.Fatalf("unexpected merchant name %q", cfg.Booking.MerchantName)
	}
}

func TestAppConfig_ParseBookingEnv(t *testing.T) {
	t.Setenv("BOOKING_APPOINTMENT_FEE", "1500")
	t.Setenv("BOOKING_CURRENCY", "inr")
	t.Setenv("BOOKING_SLOT_TTL", "10m")
	t.Setenv("BOOKING_VERIFY_TIMEOUT", "45s")
	t.Setenv("BOOKING_DUPLICATE_POLICY", "Reject")
	t.Setenv("BOOKING_RATE_PER_MINUTE", "5")
	t.Setenv("BOOKING_RATE_BURST", "2")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	got := cfg.Booking
	if got.AppointmentFee != 1500 || got.Currency != "INR" || got.SlotTTL != 10*time.Minute ||
		got.VerifyTimeout != 45*time.Second || got.DuplicatePolicy != DuplicatePolicyReject ||
		got.RatePerMinute != 5 || got.RateBurst != 2 {
		t.Fatalf("unexpected booking configuration: %#v", got)
	}
}

func TestAppConfig_InvalidDuplicatePolicy(t *testing.T) {
	t.Setenv("BOOKING_DUPLICATE_POLICY", "sometimes")

	var cfg AppConfig
	if err := env.Parse(&cfg); err == nil {
		t.Fatalf("expected error for invalid duplicate policy")
	}
}

func TestBackendConfig_Sanitize(t *testing.T) {
	b := BackendConfig{BaseURL: " https://api.example.com/api/ ", Timeout: 0, CatalogCacheTTL: -time.Second}
	b.Sanitize()
	if b.BaseURL != "https://api.example.com/api" {
		t.Fatalf("unexpected base url %q", b.BaseURL)
	}
	if b.Timeout != 15*time.Second {
		t.Fatalf("unexpected timeout %v", b.Timeout)
	}
	if b.CatalogCacheTTL != 0 {
		t.Fatalf("negative cache ttl must disable the cache, got %v", b.CatalogCacheTTL)
	}
}

func TestSessionConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name string
		in   SessionConfig
		want SessionConfig
	}{
		{
			name: "zero values",
			in:   SessionConfig{},
			want: SessionConfig{TTL: 24 * time.Hour, IdleTTL: time.Minute, RestoreTimeout: 3 * time.Second},
		},
		{
			name: "clamps resolve wait",
			in:   SessionConfig{TTL: time.Hour, ResolveWait: time.Minute, IdleTTL: time.Hour, RestoreTimeout: time.Second},
			want: SessionConfig{TTL: time.Hour, ResolveWait: 5 * time.Second, IdleTTL: time.Hour, RestoreTimeout: time.Second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Sanitize()
			if !reflect.DeepEqual(tt.in, tt.want) {
				t.Fatalf("expected %#v, got %#v", tt.want, tt.in)
			}
		})
	}
}

func TestBookingConfig_Sanitize(t *testing.T) {
	b := BookingConfig{}
	b.Sanitize()

	if b.AppointmentFee != 1000 || b.Currency != "INR" || b.SlotTTL != time.Minute ||
		b.DuplicatePolicy != DuplicatePolicyAllow || b.RateBurst != 1 {
		t.Fatalf("unexpected sanitized booking config: %#v", b)
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{CompressionLevel: 42}
	h.Sanitize()
	if h.Addr != ":8080" || h.CompressionLevel != 9 {
		t.Fatalf("unexpected http config: %#v", h)
	}
}

func TestObservabilityConfig_Sanitize(t *testing.T) {
	c := ObservabilityConfig{
		LogLevel: "LOUD",
		Notifications: ObservabilityNotificationsConfig{
			Enabled: true,
			Slack:   SlackNotificationConfig{Enabled: true, WebhookURL: "   "},
		},
	}
	c.Sanitize()

	if c.LogLevel != "info" {
		t.Fatalf("expected info log level, got %q", c.LogLevel)
	}
	if c.Notifications.Slack.Enabled {
		t.Fatalf("slack must be disabled without a webhook")
	}
	if c.Notifications.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", c.Notifications.Timeout)
	}
	if c.Notifications.Slack.Username != defaultObservabilityName {
		t.Fatalf("unexpected username %q", c.Notifications.Slack.Username)
	}
}

func TestDBConfig_Sanitize(t *testing.T) {
	c := DBConfig{SSLMode: "  ", ConnectAttempts: 0, ConnectBackoff: -time.Second}
	c.Sanitize()
	if c.SSLMode != "disable" || c.ConnectAttempts != 1 || c.ConnectBackoff != time.Second || c.MaxOpenConns != 10 {
		t.Fatalf("unexpected ledger config: %#v", c)
	}
}

func TestRedisConfig_Sanitize(t *testing.T) {
	c := RedisConfig{URI: " cache:6379 ", SentinelNodes: []string{" s1:26379", "", "  "}, DB: -1}
	c.Sanitize()
	if c.URI != "cache:6379" || !reflect.DeepEqual(c.SentinelNodes, []string{"s1:26379"}) || c.DB != 0 {
		t.Fatalf("unexpected redis config: %#v", c)
	}
}
