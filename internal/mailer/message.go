package mailer

import (
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var errNoRecipients = errors.New("mailer: no recipients")

// buildMessage renders e as an RFC 5322 plain-text message.
func buildMessage(e Email, domain string, now time.Time) (string, error) {
	if len(e.To) == 0 {
		return "", errNoRecipients
	}
	if e.From == "" {
		return "", errors.New("mailer: missing from address")
	}
	for _, addr := range append([]string{e.From}, e.To...) {
		if strings.ContainsAny(addr, "\r\n") {
			return "", fmt.Errorf("mailer: invalid address %q", addr)
		}
	}

	from := (&mail.Address{Name: e.FromName, Address: e.From}).String()

	var b strings.Builder
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }
	header("From", from)
	header("To", strings.Join(e.To, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", e.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domain))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(e.TextBody, "\r\n", "\n"), "\n", "\r\n"))
	return b.String(), nil
}
