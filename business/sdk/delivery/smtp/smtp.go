// Package smtp provides the raw SMTP delivery vendor adapter.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
)

// Provider implements the delivery.Provider interface against a tenant
// supplied SMTP relay.
type Provider struct {
	timeout time.Duration
}

// New constructs an SMTP adapter. The timeout bounds the whole SMTP
// conversation, not just the dial.
func New(timeout time.Duration) *Provider {
	return &Provider{
		timeout: timeout,
	}
}

// Name returns the provider identity for registry dispatch.
func (p *Provider) Name() provider.Provider {
	return provider.SMTP
}

// ValidateCredential reports whether the credential carries everything an
// SMTP send needs.
func (p *Provider) ValidateCredential(cred delivery.Credential) bool {
	return cred.Host != "" && cred.Port != 0 && cred.Username != "" && cred.Password != "" && cred.FromEmail != ""
}

// Send delivers the message over the tenant's SMTP relay and returns a
// generated message id. The relay itself does not hand one back.
func (p *Provider) Send(ctx context.Context, cred delivery.Credential, msg delivery.Message) (string, error) {
	addr := fmt.Sprintf("%s:%d", cred.Host, cred.Port)

	d := net.Dialer{Timeout: p.timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", delivery.NewError(provider.SMTP, "dial[%s]: %s", addr, err)
	}
	defer conn.Close()

	// One deadline covers the full conversation.
	if err := conn.SetDeadline(time.Now().Add(p.timeout)); err != nil {
		return "", delivery.NewError(provider.SMTP, "deadline: %s", err)
	}

	client, err := smtp.NewClient(conn, cred.Host)
	if err != nil {
		return "", delivery.NewError(provider.SMTP, "handshake: %s", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: cred.Host}); err != nil {
			return "", delivery.NewError(provider.SMTP, "starttls: %s", err)
		}
	}

	auth := smtp.PlainAuth("", cred.Username, cred.Password, cred.Host)
	if ok, _ := client.Extension("AUTH"); ok {
		if err := client.Auth(auth); err != nil {
			return "", delivery.NewError(provider.SMTP, "auth: %s", err)
		}
	}

	if err := client.Mail(cred.FromEmail); err != nil {
		return "", delivery.NewError(provider.SMTP, "mail from: %s", err)
	}

	if err := client.Rcpt(msg.To); err != nil {
		return "", delivery.NewError(provider.SMTP, "rcpt to: %s", err)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New(), cred.Host)

	w, err := client.Data()
	if err != nil {
		return "", delivery.NewError(provider.SMTP, "data: %s", err)
	}

	if _, err := w.Write(buildMIME(messageID, cred, msg)); err != nil {
		return "", delivery.NewError(provider.SMTP, "write: %s", err)
	}

	if err := w.Close(); err != nil {
		return "", delivery.NewError(provider.SMTP, "close: %s", err)
	}

	if err := client.Quit(); err != nil {
		return "", delivery.NewError(provider.SMTP, "quit: %s", err)
	}

	return messageID, nil
}

func buildMIME(messageID string, cred delivery.Credential, msg delivery.Message) []byte {
	var b strings.Builder

	from := cred.FromEmail
	if cred.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cred.FromName, cred.FromEmail)
	}

	to := msg.To
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", msg.ToName, msg.To)
	}

	fmt.Fprintf(&b, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")

	return []byte(b.String())
}
