package orders

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/apperr"
)

func strp(s string) *string { return &s }

func TestSummaryCamelCaseAndZeroMoney(t *testing.T) {
	rec := Record{
		ID:          "o1",
		OrderNumber: "ORD-1001",
		Status:      StatusPending,
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	b, err := json.Marshal(rec.Summary())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "o1",
		"orderNumber": "ORD-1001",
		"total": 0,
		"status": "pending",
		"paymentStatus": "",
		"createdAt": "2024-01-02T03:04:05Z"
	}`, string(b))
}

func TestStatusUpdateValidate(t *testing.T) {
	require.NoError(t, StatusUpdate{Status: StatusShipped, TrackingNumber: strp("1Z999")}.Validate())

	err := StatusUpdate{Status: "lost"}.Validate()
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Fields, "status")

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	err = StatusUpdate{Status: StatusShipped, TrackingNumber: strp(string(long))}.Validate()
	ae, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "must be at most 100", ae.Fields["trackingNumber"])
}

func TestApplyPreservesAbsentFields(t *testing.T) {
	now := time.Now()
	rec := Record{Status: StatusProcessing, TrackingNumber: strp("T1"), Notes: strp("fragile")}
	got := rec.Apply(StatusUpdate{Status: StatusShipped, Carrier: strp("UPS")}, now)

	assert.Equal(t, StatusShipped, got.Status)
	assert.Equal(t, "T1", *got.TrackingNumber)
	assert.Equal(t, "UPS", *got.TrackingCarrier)
	assert.Equal(t, "fragile", *got.Notes)
	assert.Equal(t, now, got.UpdatedAt)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusProcessing))
	assert.True(t, CanTransition(StatusShipped, StatusShipped))
	assert.True(t, CanTransition(StatusDelivered, StatusRefunded))
	assert.False(t, CanTransition(StatusDelivered, StatusPending))
	assert.False(t, CanTransition(StatusCancelled, StatusShipped))
	for _, s := range Statuses {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status("lost").Valid())
}

func TestParseListFilter(t *testing.T) {
	lf, err := ParseListFilter(url.Values{"status": {"shipped"}, "search": {" ord "}})
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, lf.Status)
	assert.Equal(t, "ord", lf.Search)
	assert.Equal(t, 20, lf.Limit)

	_, err = ParseListFilter(url.Values{"status": {"paid"}})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Fields, "status")
}

func TestQueryMatches(t *testing.T) {
	rec := Record{
		UserID:         strp("u1"),
		OrderNumber:    "ORD-1001",
		TrackingNumber: strp("1ZABC"),
		Status:         StatusShipped,
		CreatedAt:      time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC),
	}
	q := Query{UserID: "u1"}
	assert.True(t, q.Matches(rec))

	q.Search = "1zab"
	assert.True(t, q.Matches(rec))

	q.Status = StatusPending
	assert.False(t, q.Matches(rec))

	q = Query{UserID: "u2"}
	assert.False(t, q.Matches(rec))

	q = Query{}
	q.StartDate = "2024-06-11"
	assert.False(t, q.Matches(rec))
}

func TestStatusUpdatedPayload(t *testing.T) {
	rec := Record{ID: "o1", OrderNumber: "N1", UserID: strp("u1"), Status: StatusShipped, TrackingNumber: strp("T")}
	p := rec.StatusUpdatedPayload("admin-1")
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "T", p.TrackingNumber)
	assert.Equal(t, "admin-1", p.ActorID)
}
