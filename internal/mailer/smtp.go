package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	To       string
}

// SMTPRelay sends mail through an authenticated SMTP submission server.
type SMTPRelay struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPRelay(cfg SMTPConfig) (*SMTPRelay, error) {
	if cfg.User == "" || cfg.Password == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.To == "" {
		cfg.To = cfg.User
	}
	return &SMTPRelay{cfg: cfg, sendMail: smtp.SendMail}, nil
}

func (r *SMTPRelay) Send(ctx context.Context, msg ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	auth := smtp.PlainAuth("", r.cfg.User, r.cfg.Password, r.cfg.Host)
	addr := net.JoinHostPort(r.cfg.Host, r.cfg.Port)
	return r.sendMail(addr, auth, r.cfg.User, []string{r.cfg.To}, r.compose(msg))
}

func (r *SMTPRelay) compose(msg ContactMessage) []byte {
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, msg.Name, msg.Email, msg.Message)

	return []byte("To: " + r.cfg.To + "\r\n" +
		"Subject: " + headerSafe("Portfolio Contact: "+msg.Name) + "\r\n" +
		"From: " + r.cfg.User + "\r\n" +
		"Reply-To: " + headerSafe(msg.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

// headerSafe strips line breaks so form input cannot inject headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
