package mailer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/gomail.v2"
)

// ErrNotConfigured means one or more CONTACT_EMAIL_* variables are missing.
var ErrNotConfigured = errors.New("mailer not configured")

// Attachment is an in-memory file forwarded with a lead submission.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a lead-relay email. FromName/ReplyTo carry the submitter's
// identity so staff can answer directly from their inbox.
type Message struct {
	FromName    string
	ReplyTo     string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Mailer interface {
	Send(msg *Message) error
}

type config struct {
	user string
	pass string
	to   string
}

// SMTPMailer relays lead emails through an SMTP account (gmail app
// password in production). Credentials are read lazily on first send so a
// misconfigured mailer does not stop the rest of the service from booting.
type SMTPMailer struct {
	host string
	port int

	once sync.Once
	cfg  *config
	err  error
}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{host: "smtp.gmail.com", port: 587}
}

func (m *SMTPMailer) load() (*config, error) {
	m.once.Do(func() {
		user := strings.TrimSpace(os.Getenv("CONTACT_EMAIL_USER"))
		pass := strings.TrimSpace(os.Getenv("CONTACT_EMAIL_APP_PASSWORD"))
		to := strings.TrimSpace(os.Getenv("CONTACT_EMAIL_TO"))

		var missing []string
		if user == "" {
			missing = append(missing, "CONTACT_EMAIL_USER")
		}
		if pass == "" {
			missing = append(missing, "CONTACT_EMAIL_APP_PASSWORD")
		}
		if to == "" {
			missing = append(missing, "CONTACT_EMAIL_TO")
		}
		if len(missing) > 0 {
			m.err = fmt.Errorf("%w: missing environment variables: %s",
				ErrNotConfigured, strings.Join(missing, ", "))
			return
		}
		m.cfg = &config{user: user, pass: pass, to: to}
	})
	return m.cfg, m.err
}

func (m *SMTPMailer) Send(msg *Message) error {
	cfg, err := m.load()
	if err != nil {
		return err
	}

	mail := gomail.NewMessage()
	from := cfg.user
	if msg.FromName != "" {
		from = mail.FormatAddress(cfg.user, msg.FromName)
	}
	mail.SetHeader("From", from)
	mail.SetHeader("To", cfg.to)
	if msg.ReplyTo != "" {
		mail.SetHeader("Reply-To", msg.ReplyTo)
	}
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)

	for _, att := range msg.Attachments {
		data := att.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if att.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {att.ContentType},
			}))
		}
		mail.Attach(att.Filename, settings...)
	}

	d := gomail.NewDialer(m.host, m.port, cfg.user, cfg.pass)
	return d.DialAndSend(mail)
}
