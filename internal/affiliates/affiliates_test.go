package affiliates

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/apperr"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func TestViewCoercesNullMoney(t *testing.T) {
	v := Commission{ID: "c1", Status: StatusPending}.View()
	assert.Equal(t, 0.0, v.Revenue)
	assert.Equal(t, 0.0, v.Commission)
	assert.Equal(t, "", v.OrderID)
}

func TestSummaryAdd(t *testing.T) {
	var sum Summary
	for _, c := range []Commission{
		{Status: StatusPending, Revenue: f(100), Amount: f(10)},
		{Status: StatusApproved, Revenue: f(50), Amount: f(5)},
		{Status: StatusPaid, Revenue: nil, Amount: f(2.5)},
		{Status: StatusCancelled, Revenue: f(20), Amount: f(2)},
	} {
		sum = sum.Add(c)
	}
	assert.Equal(t, Summary{
		TotalRevenue:       170,
		TotalCommission:    17.5,
		PendingCommission:  10,
		ApprovedCommission: 5,
		PaidCommission:     2.5,
	}, sum)
}

func TestCommissionUpdateValidate(t *testing.T) {
	require.NoError(t, CommissionUpdate{Status: StatusApproved}.Validate())

	err := CommissionUpdate{Status: "refunded"}.Validate()
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Fields, "status")

	err = CommissionUpdate{}.Validate()
	ae, _ = apperr.As(err)
	assert.Equal(t, "is required", ae.Fields["status"])
}

func TestApplyKeepsNotesWhenAbsent(t *testing.T) {
	now := time.Now()
	c := Commission{Status: StatusPending, Notes: s("first")}
	got := c.Apply(CommissionUpdate{Status: StatusPaid}, now)
	assert.Equal(t, StatusPaid, got.Status)
	assert.Equal(t, "first", *got.Notes)
	assert.Equal(t, now, got.UpdatedAt)
}

func TestParseListFilterStatus(t *testing.T) {
	lf, err := ParseListFilter(url.Values{"status": {"paid"}, "page": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, lf.Status)
	assert.Equal(t, 2, lf.Page)

	_, err = ParseListFilter(url.Values{"status": {"shipped"}, "limit": {"500"}})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Fields, "status")
	assert.Contains(t, ae.Fields, "limit")
}

func TestQueryMatches(t *testing.T) {
	c := Commission{AffiliateCodeID: "a1", Status: StatusPending, OrderID: s("ORD-77"),
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	q := Query{AffiliateCodeID: "a1"}
	assert.True(t, q.Matches(c))

	q.Search = "ord-7"
	assert.True(t, q.Matches(c))

	q.AffiliateCodeID = "a2"
	assert.False(t, q.Matches(c))

	q = Query{}
	q.EndDate = "2024-04-30"
	assert.False(t, q.Matches(c))
}

func TestNewCodeValidate(t *testing.T) {
	assert.NoError(t, NewCode{Code: "SUMMER10", Email: "a@b.co", Name: "Ann"}.Validate())
	assert.Error(t, NewCode{Code: "bad code!", Email: "a@b.co", Name: "Ann"}.Validate())
}
