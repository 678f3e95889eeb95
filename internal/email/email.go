// Package email renders and sends customer and staff notifications over
// SMTP.  It implements queue.Mailer for the confirmation consumer.
package email

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/rutlandfarmpark/booking-api/internal/model"
	"github.com/rutlandfarmpark/booking-api/internal/queue"
)

// Config holds the SMTP connection and addressing details.
type Config struct {
	Host           string
	Port           int
	Username       string
	Password       string
	From           string // sender shown to customers
	NotificationTo string // staff inbox for contact form messages
	SiteName       string
}

// Mailer sends plain-text notifications through a single SMTP account.
type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

// NewMailer returns a Mailer for the given SMTP configuration.
func NewMailer(cfg Config) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// SendBookingConfirmation emails the customer their confirmed booking with
// reference, date and a line-by-line price breakdown.
func (m *Mailer) SendBookingConfirmation(ev queue.BookingConfirmedEvent) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", ev.CustomerName)
	fmt.Fprintf(&b, "Your visit to %s is confirmed.\n\n", m.cfg.SiteName)
	fmt.Fprintf(&b, "Booking reference: %s\n", ev.Reference)
	fmt.Fprintf(&b, "Date of visit: %s\n\n", ev.Date)
	b.WriteString("Tickets:\n")
	for _, t := range ev.Tickets {
		fmt.Fprintf(&b, "  %d x %s @ %s\n", t.Quantity, t.Name, pounds(t.UnitPrice))
	}
	fmt.Fprintf(&b, "\nTotal paid: %s\n\n", pounds(ev.TotalAmount))
	b.WriteString("Please show this email or quote your reference at the gate.\n\n")
	fmt.Fprintf(&b, "See you soon,\n%s\n", m.cfg.SiteName)

	subject := fmt.Sprintf("Booking confirmed - %s", ev.Reference)
	return m.send(ev.CustomerEmail, subject, b.String())
}

// SendOrderConfirmation emails the customer their paid shop order.
func (m *Mailer) SendOrderConfirmation(ev queue.OrderPaidEvent) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", ev.CustomerName)
	fmt.Fprintf(&b, "Thank you for your order from %s.\n\n", m.cfg.SiteName)
	fmt.Fprintf(&b, "Order reference: %s\n\n", ev.Reference)
	b.WriteString("Items:\n")
	for _, it := range ev.Items {
		name := it.Name
		if it.Variant != "" {
			name += " (" + it.Variant + ")"
		}
		fmt.Fprintf(&b, "  %d x %s @ %s\n", it.Quantity, name, pounds(it.UnitPrice))
	}
	fmt.Fprintf(&b, "\nTotal paid: %s\n\n", pounds(ev.TotalAmount))
	b.WriteString("Gift vouchers and adoption packs are prepared within 3 working days.\n\n")
	fmt.Fprintf(&b, "Thanks,\n%s\n", m.cfg.SiteName)

	subject := fmt.Sprintf("Order confirmed - %s", ev.Reference)
	return m.send(ev.CustomerEmail, subject, b.String())
}

// SendContactNotification forwards a contact form submission to the staff
// inbox.  Reply-To is set to the visitor so staff can answer directly.
func (m *Mailer) SendContactNotification(sub model.ContactSubmission) error {
	var b strings.Builder
	fmt.Fprintf(&b, "New contact form message\n\n")
	fmt.Fprintf(&b, "From: %s <%s>\n", sub.Name, sub.Email)
	if sub.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", sub.Phone)
	}
	fmt.Fprintf(&b, "\n%s\n", sub.Message)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.NotificationTo)
	msg.SetHeader("Reply-To", sub.Email)
	msg.SetHeader("Subject", "Website enquiry from "+sub.Name)
	msg.SetBody("text/plain", b.String())
	return m.dialer.DialAndSend(msg)
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

// pounds renders a pence amount as a pound value for email bodies.
func pounds(pence int64) string {
	return fmt.Sprintf("£%d.%02d", pence/100, pence%100)
}
