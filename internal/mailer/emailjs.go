package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

const DefaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

type EmailJSConfig struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	ToName     string
	Endpoint   string
}

// EmailJSRelay posts messages to the EmailJS REST API.
type EmailJSRelay struct {
	cfg    EmailJSConfig
	client *http.Client
}

// RelayError is a non-2xx answer from the relay service.
type RelayError struct {
	Status int
	Body   string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay responded %d: %s", e.Status, e.Body)
}

func NewEmailJSRelay(cfg EmailJSConfig, client *http.Client) (*EmailJSRelay, error) {
	if cfg.ServiceID == "" || cfg.TemplateID == "" || cfg.PublicKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEmailJSEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &EmailJSRelay{cfg: cfg, client: client}, nil
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (r *EmailJSRelay) Send(ctx context.Context, msg ContactMessage) error {
	// Templates differ in the variable names they expect, so the sender is
	// passed under every common alias.
	payload, err := json.Marshal(emailJSRequest{
		ServiceID:  r.cfg.ServiceID,
		TemplateID: r.cfg.TemplateID,
		UserID:     r.cfg.PublicKey,
		TemplateParams: map[string]string{
			"from_name":  msg.Name,
			"from_email": msg.Email,
			"name":       msg.Name,
			"email":      msg.Email,
			"reply_to":   msg.Email,
			"message":    msg.Message,
			"to_name":    r.cfg.ToName,
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &RelayError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	return nil
}
