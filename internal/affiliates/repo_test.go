package affiliates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepoComparesIDsAsText(t *testing.T) {
	w := Query{AffiliateCodeID: "c-1"}.where()
	assert.Equal(t, " WHERE affiliate_code_id::text = $1", w.SQL())
	assert.Contains(t, updateCommissionSQL, "WHERE id::text = $1")
}
