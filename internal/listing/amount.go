package listing

import "math"

// Amount coerces a nullable storage monetary value to the number the API
// returns. Null, NaN and infinities all become 0.
func Amount(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

// Text dereferences a nullable text column.
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
