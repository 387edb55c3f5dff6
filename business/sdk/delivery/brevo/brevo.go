// Package brevo provides the Brevo delivery vendor adapter.
package brevo

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
)

const baseURL = "https://api.brevo.com"

// Provider implements the delivery.Provider interface against the Brevo
// transactional email API.
type Provider struct {
	client *resty.Client
}

// New constructs a Brevo adapter. Every send is bounded by the specified
// timeout.
func New(timeout time.Duration) *Provider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &Provider{
		client: client,
	}
}

// Name returns the provider identity for registry dispatch.
func (p *Provider) Name() provider.Provider {
	return provider.Brevo
}

// ValidateCredential reports whether the credential carries everything a
// Brevo send needs.
func (p *Provider) ValidateCredential(cred delivery.Credential) bool {
	return cred.APIKey != "" && cred.FromEmail != ""
}

// Send submits the message to Brevo and returns the vendor message id.
func (p *Provider) Send(ctx context.Context, cred delivery.Credential, msg delivery.Message) (string, error) {
	type contact struct {
		Email string `json:"email"`
		Name  string `json:"name,omitempty"`
	}

	payload := struct {
		Sender      contact   `json:"sender"`
		To          []contact `json:"to"`
		Subject     string    `json:"subject"`
		HTMLContent string    `json:"htmlContent"`
	}{
		Sender:      contact{Email: cred.FromEmail, Name: cred.FromName},
		To:          []contact{{Email: msg.To, Name: msg.ToName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	}

	var result struct {
		MessageID string `json:"messageId"`
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("api-key", cred.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&result).
		Post("/v3/smtp/email")

	if err != nil {
		return "", delivery.NewError(provider.Brevo, "request: %s", err)
	}

	if resp.IsError() {
		return "", delivery.NewError(provider.Brevo, "status[%d]: %s", resp.StatusCode(), resp.String())
	}

	return result.MessageID, nil
}
