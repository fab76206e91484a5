// Package mailer relays contact form submissions. A single Client is built
// at startup and handed to the HTTP layer.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrNotConfigured = errors.New("mailer: relay credentials not configured")

// ContactMessage is one contact form submission.
type ContactMessage struct {
	Name    string `json:"name" form:"fullName" validate:"required,max=120"`
	Email   string `json:"email" form:"email" validate:"required,email,max=254"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
}

// Normalize trims surrounding whitespace from every field.
func (m ContactMessage) Normalize() ContactMessage {
	return ContactMessage{
		Name:    strings.TrimSpace(m.Name),
		Email:   strings.TrimSpace(m.Email),
		Message: strings.TrimSpace(m.Message),
	}
}

// Relay delivers a validated message.
type Relay interface {
	Send(ctx context.Context, msg ContactMessage) error
}

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, tag := range e.Fields {
		parts = append(parts, f+": "+tag)
	}
	return "mailer: invalid message (" + strings.Join(parts, ", ") + ")"
}

type Client struct {
	relay    Relay
	validate *validator.Validate
	logger   *slog.Logger
}

type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(relay Relay, opts ...Option) *Client {
	c := &Client{
		relay:    relay,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate normalizes msg and checks it against the field rules.
func (c *Client) Validate(msg ContactMessage) (ContactMessage, error) {
	msg = msg.Normalize()
	err := c.validate.Struct(msg)
	if err == nil {
		return msg, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msg, err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return msg, &ValidationError{Fields: fields}
}

// Send validates and relays msg.
func (c *Client) Send(ctx context.Context, msg ContactMessage) error {
	msg, err := c.Validate(msg)
	if err != nil {
		return err
	}
	if c.relay == nil {
		return ErrNotConfigured
	}
	if err := c.relay.Send(ctx, msg); err != nil {
		c.logger.Error("mailer: send failed", "from", msg.Email, "err", err)
		return fmt.Errorf("mailer: send: %w", err)
	}
	c.logger.Info("mailer: message sent", "name", msg.Name, "from", msg.Email)
	return nil
}

// LogRelay only logs messages. It stands in for a real relay during
// development.
type LogRelay struct {
	Logger *slog.Logger
}

func (r LogRelay) Send(_ context.Context, msg ContactMessage) error {
	l := r.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Info("mailer: contact message (not delivered)",
		"name", msg.Name, "email", msg.Email, "length", len(msg.Message))
	return nil
}
