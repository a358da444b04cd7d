package redisx

import "time"

const (
	// Resolved identity per access token: session:{sha256(token)} -> identity JSON
	KeySession = "session:%s"

	// Checkout idempotency: idem:paypal:{idempotency_key} -> provider order id
	KeyIdemPayPalOrder = "idem:paypal:%s"

	// Magic-link throttle: magiclink:{lower(email)} -> "1"
	KeyMagicLink = "magiclink:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSession     = time.Minute
	TTLIdempotency = 24 * time.Hour
	TTLMagicLink   = time.Minute
	TTLDedup       = 48 * time.Hour
)
