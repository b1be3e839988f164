package mail

import (
	"context"
	"fmt"
	"strings"
)

// WelcomeMailer implements session.WelcomeMailer: a short welcome note after
// successful registration. Callers treat failures as best-effort.
type WelcomeMailer struct {
	client      EmailClient
	fromAddress string
	storeName   string
}

func NewWelcomeMailer(client EmailClient, fromAddress, storeName string) *WelcomeMailer {
	name := strings.TrimSpace(storeName)
	if name == "" {
		name = "Storefront"
	}
	return &WelcomeMailer{
		client:      client,
		fromAddress: strings.TrimSpace(fromAddress),
		storeName:   name,
	}
}

func (m *WelcomeMailer) SendWelcome(ctx context.Context, toEmail string) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("welcome_mailer: email client is nil")
	}

	to := strings.TrimSpace(toEmail)
	if to == "" {
		return fmt.Errorf("welcome_mailer: to address is empty")
	}

	subject := fmt.Sprintf("Welcome to %s", m.storeName)
	body := fmt.Sprintf(
		"Hi,\n\nYour %s account is ready. You can now log in and start shopping.\n\n%s",
		m.storeName, m.storeName,
	)
	return m.client.Send(ctx, m.fromAddress, to, subject, body)
}
