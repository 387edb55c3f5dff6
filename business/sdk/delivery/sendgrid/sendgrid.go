// Package sendgrid provides the SendGrid delivery vendor adapter.
package sendgrid

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
)

const baseURL = "https://api.sendgrid.com"

// Provider implements the delivery.Provider interface against the SendGrid
// v3 mail send API.
type Provider struct {
	client *resty.Client
}

// New constructs a SendGrid adapter. Every send is bounded by the specified
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
	return provider.SendGrid
}

// ValidateCredential reports whether the credential carries everything a
// SendGrid send needs.
func (p *Provider) ValidateCredential(cred delivery.Credential) bool {
	return cred.APIKey != "" && cred.FromEmail != ""
}

// Send submits the message to SendGrid and returns the vendor message id.
func (p *Provider) Send(ctx context.Context, cred delivery.Credential, msg delivery.Message) (string, error) {
	type email struct {
		Email string `json:"email"`
		Name  string `json:"name,omitempty"`
	}

	payload := struct {
		Personalizations []struct {
			To []email `json:"to"`
		} `json:"personalizations"`
		From    email  `json:"from"`
		Subject string `json:"subject"`
		Content []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"content"`
	}{
		Personalizations: []struct {
			To []email `json:"to"`
		}{
			{To: []email{{Email: msg.To, Name: msg.ToName}}},
		},
		From:    email{Email: cred.FromEmail, Name: cred.FromName},
		Subject: msg.Subject,
		Content: []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		}{
			{Type: "text/html", Value: msg.HTML},
		},
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(cred.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/v3/mail/send")

	if err != nil {
		return "", delivery.NewError(provider.SendGrid, "request: %s", err)
	}

	if resp.IsError() {
		return "", delivery.NewError(provider.SendGrid, "status[%d]: %s", resp.StatusCode(), resp.String())
	}

	return resp.Header().Get("X-Message-Id"), nil
}
