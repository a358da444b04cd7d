package notify

import (
	"fmt"
	"strings"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/orders"
)

// orderMessage reports false for statuses customers are not emailed about.
func orderMessage(p orders.StatusUpdatedPayload, siteURL string) (subject, body string, ok bool) {
	var b strings.Builder
	switch p.Status {
	case orders.StatusShipped:
		subject = fmt.Sprintf("Order %s has shipped", p.OrderNumber)
		fmt.Fprintf(&b, "Good news: order %s is on its way.\n", p.OrderNumber)
		if p.TrackingNumber != "" {
			carrier := p.TrackingCarrier
			if carrier == "" {
				carrier = "the carrier"
			}
			fmt.Fprintf(&b, "Track it with %s using tracking number %s.\n", carrier, p.TrackingNumber)
		}
	case orders.StatusDelivered:
		subject = fmt.Sprintf("Order %s was delivered", p.OrderNumber)
		fmt.Fprintf(&b, "Order %s has been delivered. Enjoy!\n", p.OrderNumber)
	case orders.StatusCancelled:
		subject = fmt.Sprintf("Order %s was cancelled", p.OrderNumber)
		fmt.Fprintf(&b, "Order %s has been cancelled. Reply to this email if that is unexpected.\n", p.OrderNumber)
	case orders.StatusRefunded:
		subject = fmt.Sprintf("Order %s was refunded", p.OrderNumber)
		fmt.Fprintf(&b, "A refund for order %s has been issued.\n", p.OrderNumber)
	default:
		return "", "", false
	}
	fmt.Fprintf(&b, "\n%s/account/orders\n", siteURL)
	return subject, b.String(), true
}

func commissionMessage(p affiliates.CommissionUpdatedPayload, siteURL string) (subject, body string, ok bool) {
	switch p.Status {
	case affiliates.StatusApproved:
		subject = "Your commission was approved"
		body = fmt.Sprintf("A commission of %.2f has been approved and will be included in the next payout.\n", p.Commission)
	case affiliates.StatusPaid:
		subject = "Your commission was paid"
		body = fmt.Sprintf("A commission of %.2f has been paid out.\n", p.Commission)
	default:
		return "", "", false
	}
	return subject, body + "\n" + siteURL + "/affiliate\n", true
}
