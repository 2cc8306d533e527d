package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"DIMS-backend/internal/platform/db"
)

// Mailer delivers events over SMTP. Created/declined style routing follows
// the department workflow: new requests go to the admin inbox, decisions and
// store actions go back to the requester.
type Mailer struct {
	cfg  db.NotifyConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg db.NotifyConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// NewNotifier returns a Mailer when mail is enabled, LogNotifier otherwise.
func NewNotifier(cfg db.NotifyConfig) Notifier {
	if cfg.Enabled {
		return NewMailer(cfg)
	}
	return LogNotifier{}
}

func (m *Mailer) Notify(_ context.Context, ev Event) error {
	to := m.recipient(ev)
	if to == "" {
		return fmt.Errorf("no recipient for event %s", ev.Kind)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", Subject(ev))
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(Body(ev))

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return m.send(addr, auth, m.cfg.From, []string{to}, []byte(b.String()))
}

func (m *Mailer) recipient(ev Event) string {
	if ev.Kind == EventRequestCreated {
		return m.cfg.AdminEmail
	}
	return ev.RequesterEmail
}
