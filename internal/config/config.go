package config

import (
	"os"
	"strconv"
	"strings"
)

// Mode tells whether the hosted auth/database backend is reachable.
type Mode int

const (
	// ModeDegraded: backend URL or anon key missing. Every guarded route
	// behaves as unauthenticated.
	ModeDegraded Mode = iota
	ModeLive
)

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "degraded"
}

type Backend struct {
	Mode           Mode
	URL            string
	AnonKey        string
	ServiceRoleKey string // server-only
	PostgresDSN    string
	CookieName     string
}

type PayPal struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Currency     string
}

type SMTP struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

type Config struct {
	HTTPAddr    string
	ServiceName string
	Env         string
	SiteURL     string

	Backend Backend
	PayPal  PayPal
	SMTP    SMTP

	RedisAddr    string
	KafkaBrokers []string

	StrictOrderTransitions bool

	NotifierGroup   string
	NotifierWorkers int
}

func Load() Config {
	b := Backend{
		URL:            strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),
		AnonKey:        os.Getenv("BACKEND_ANON_KEY"),
		ServiceRoleKey: os.Getenv("BACKEND_SERVICE_ROLE_KEY"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		CookieName:     getenv("AUTH_COOKIE_NAME", "sb-access-token"),
	}
	if b.URL != "" && b.AnonKey != "" {
		b.Mode = ModeLive
	}

	return Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":8081"),
		ServiceName: getenv("SERVICE_NAME", "storefront-api"),
		Env:         getenv("APP_ENV", "production"),
		SiteURL:     strings.TrimRight(getenv("SITE_URL", "http://localhost:3000"), "/"),
		Backend:     b,
		PayPal: PayPal{
			ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
			BaseURL:      strings.TrimRight(getenv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"), "/"),
			Currency:     getenv("PAYPAL_CURRENCY", "USD"),
		},
		SMTP: SMTP{
			Host: getenv("SMTP_HOST", "localhost"),
			Port: getenv("SMTP_PORT", "1025"),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			From: getenv("MAIL_FROM", "no-reply@localhost"),
		},
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		KafkaBrokers:           splitCSV(os.Getenv("KAFKA_BROKERS")),
		StrictOrderTransitions: getbool("STRICT_ORDER_TRANSITIONS", false),
		NotifierGroup:          getenv("NOTIFIER_GROUP", "notifier-svc"),
		NotifierWorkers:        getint("NOTIFIER_WORKERS", 4),
	}
}

// PayPalEnabled reports whether checkout can reach the payment provider.
func (c Config) PayPalEnabled() bool {
	return c.PayPal.ClientID != "" && c.PayPal.ClientSecret != ""
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func getint(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
