package mailer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	now := time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)
	raw, err := buildMessage(Email{
		FromName: "Shop",
		From:     "no-reply@shop.test",
		To:       []string{"ann@shop.test"},
		Subject:  "Your order has shipped",
		TextBody: "Line one\nLine two",
	}, "shop.test", now)
	require.NoError(t, err)

	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, head, `From: "Shop" <no-reply@shop.test>`)
	assert.Contains(t, head, "To: ann@shop.test")
	assert.Contains(t, head, "Subject: Your order has shipped")
	assert.Contains(t, head, "Date: Wed, 02 Apr 2025 09:30:00 +0000")
	assert.Contains(t, head, "@shop.test>")
	assert.Equal(t, "Line one\r\nLine two", body)
}

func TestBuildMessageRejects(t *testing.T) {
	_, err := buildMessage(Email{From: "a@b.test"}, "b.test", time.Now())
	assert.ErrorIs(t, err, errNoRecipients)

	_, err = buildMessage(Email{From: "a@b.test", To: []string{"x@y.test\r\nBcc: z@y.test"}}, "b.test", time.Now())
	assert.Error(t, err)

	_, err = buildMessage(Email{To: []string{"x@y.test"}}, "b.test", time.Now())
	assert.Error(t, err)
}
