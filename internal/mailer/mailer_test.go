package mailer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"
)

type fakeRelay struct {
	sent []ContactMessage
	err  error
}

func (f *fakeRelay) Send(_ context.Context, msg ContactMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type MailerSuite struct {
	suite.Suite
	valid ContactMessage
}

func TestMailerSuite(t *testing.T) {
	suite.Run(t, new(MailerSuite))
}

func (s *MailerSuite) SetupTest() {
	s.valid = ContactMessage{Name: " Ada ", Email: "ada@example.com", Message: "hello there"}
}

func (s *MailerSuite) TestSendNormalizesAndRelays() {
	relay := &fakeRelay{}
	err := New(relay).Send(context.Background(), s.valid)
	s.Require().NoError(err)
	s.Require().Len(relay.sent, 1)
	s.Equal("Ada", relay.sent[0].Name)
}

func (s *MailerSuite) TestValidationErrors() {
	relay := &fakeRelay{}
	err := New(relay).Send(context.Background(), ContactMessage{Name: "  ", Email: "nope"})

	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("required", verr.Fields["name"])
	s.Equal("email", verr.Fields["email"])
	s.Equal("required", verr.Fields["message"])
	s.Empty(relay.sent)
}

func (s *MailerSuite) TestNilRelayIsNotConfigured() {
	err := New(nil).Send(context.Background(), s.valid)
	s.ErrorIs(err, ErrNotConfigured)
}

func (s *MailerSuite) TestRelayErrorIsWrapped() {
	boom := errors.New("boom")
	err := New(&fakeRelay{err: boom}).Send(context.Background(), s.valid)
	s.ErrorIs(err, boom)
}

func (s *MailerSuite) TestSMTPRelayComposesMessage() {
	relay, err := NewSMTPRelay(SMTPConfig{User: "me@example.com", Password: "pw", To: "inbox@example.com"})
	s.Require().NoError(err)

	var addr, from string
	var to []string
	var body []byte
	relay.sendMail = func(a string, _ smtp.Auth, f string, t []string, msg []byte) error {
		addr, from, to, body = a, f, t, msg
		return nil
	}

	msg := ContactMessage{Name: "Ada\r\nBcc: evil@example.com", Email: "ada@example.com", Message: "hi"}
	s.Require().NoError(relay.Send(context.Background(), msg))
	s.Equal("smtp.gmail.com:587", addr)
	s.Equal("me@example.com", from)
	s.Equal([]string{"inbox@example.com"}, to)

	text := string(body)
	s.Contains(text, "Reply-To: ada@example.com\r\n")
	s.Contains(text, "Subject: Portfolio Contact: Ada  Bcc: evil@example.com\r\n")
	headers := strings.SplitN(text, "\r\n\r\n", 2)[0]
	s.NotContains(headers, "\r\nBcc:")
	s.Contains(text, "Message:\nhi")
}

func (s *MailerSuite) TestSMTPRelayNeedsCredentials() {
	_, err := NewSMTPRelay(SMTPConfig{User: "me"})
	s.ErrorIs(err, ErrNotConfigured)
}

func (s *MailerSuite) TestEmailJSRelayPostsTemplateParams() {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		s.NoError(json.Unmarshal(raw, &got))
		_, _ = io.WriteString(w, "OK")
	}))
	defer srv.Close()

	relay, err := NewEmailJSRelay(EmailJSConfig{
		ServiceID: "service_x", TemplateID: "template_y", PublicKey: "key", ToName: "Ishitha",
		Endpoint: srv.URL,
	}, srv.Client())
	s.Require().NoError(err)
	s.Require().NoError(relay.Send(context.Background(), ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "hi"}))

	s.Equal("service_x", got.ServiceID)
	s.Equal("template_y", got.TemplateID)
	s.Equal("key", got.UserID)
	s.Equal("Ada", got.TemplateParams["from_name"])
	s.Equal("Ada", got.TemplateParams["name"])
	s.Equal("ada@example.com", got.TemplateParams["reply_to"])
	s.Equal("Ishitha", got.TemplateParams["to_name"])
}

func (s *MailerSuite) TestEmailJSRelayError() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "The Public Key is invalid\n")
	}))
	defer srv.Close()

	relay, err := NewEmailJSRelay(EmailJSConfig{ServiceID: "s", TemplateID: "t", PublicKey: "k", Endpoint: srv.URL}, nil)
	s.Require().NoError(err)

	err = relay.Send(context.Background(), s.valid)
	var rerr *RelayError
	s.Require().ErrorAs(err, &rerr)
	s.Equal(http.StatusBadRequest, rerr.Status)
	s.Equal("The Public Key is invalid", rerr.Body)
}

func (s *MailerSuite) TestRelayFromSettings() {
	r, err := RelayFromSettings(Settings{}, nil)
	s.NoError(err)
	s.Nil(r)

	r, err = RelayFromSettings(Settings{Relay: RelayLog}, nil)
	s.NoError(err)
	s.IsType(LogRelay{}, r)

	r, err = RelayFromSettings(Settings{EmailJS: EmailJSConfig{ServiceID: "s", TemplateID: "t", PublicKey: "k"}}, nil)
	s.NoError(err)
	s.IsType(&EmailJSRelay{}, r)

	r, err = RelayFromSettings(Settings{SMTP: SMTPConfig{User: "u", Password: "p"}}, nil)
	s.NoError(err)
	s.IsType(&SMTPRelay{}, r)

	_, err = RelayFromSettings(Settings{Relay: RelayEmailJS}, nil)
	s.ErrorIs(err, ErrNotConfigured)

	_, err = RelayFromSettings(Settings{Relay: "pigeon"}, nil)
	s.True(strings.Contains(err.Error(), "pigeon"))
}
