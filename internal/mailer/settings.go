package mailer

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	RelaySMTP    = "smtp"
	RelayEmailJS = "emailjs"
	RelayLog     = "log"
)

type Settings struct {
	// Relay selects the backend. Empty picks the first configured one.
	Relay   string
	SMTP    SMTPConfig
	EmailJS EmailJSConfig
}

// RelayFromSettings builds the configured relay. With an empty Relay and no
// credentials it returns a nil Relay and no error; Client.Send then reports
// ErrNotConfigured.
func RelayFromSettings(s Settings, httpClient *http.Client) (Relay, error) {
	switch s.Relay {
	case RelaySMTP:
		return NewSMTPRelay(s.SMTP)
	case RelayEmailJS:
		return NewEmailJSRelay(s.EmailJS, httpClient)
	case RelayLog:
		return LogRelay{}, nil
	case "":
		if r, err := NewSMTPRelay(s.SMTP); err == nil {
			return r, nil
		}
		if r, err := NewEmailJSRelay(s.EmailJS, httpClient); err == nil {
			return r, nil
		} else if !errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("mailer: unknown relay %q", s.Relay)
	}
}
