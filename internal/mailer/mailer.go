// Package mailer emails finished audit reports over SMTP.
package mailer

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	gomail "gopkg.in/gomail.v2"

	"github.com/sells-group/nap-audit-cli/internal/model"
)

// Config holds the SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends report emails. The send function is swappable for tests.
type Mailer struct {
	cfg  Config
	send func(msg *gomail.Message) error
}

func New(cfg Config) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{
		cfg:  cfg,
		send: func(msg *gomail.Message) error { return dialer.DialAndSend(msg) },
	}
}

// SendReport mails the report file to the recipients with a summary body.
func (m *Mailer) SendReport(to []string, reportPath string, results []model.AuditResult) error {
	if len(to) == 0 {
		return eris.New("mailer: no recipients")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", fmt.Sprintf("NAP Audit Report %s", time.Now().Format("2006-01-02")))
	msg.SetBody("text/plain", summaryBody(results))
	msg.Attach(reportPath)

	return eris.Wrap(m.send(msg), "mailer: send report")
}

// summaryBody renders the per-status counts for the email text.
func summaryBody(results []model.AuditResult) string {
	counts := map[model.AuditStatus]int{}
	for _, r := range results {
		counts[r.Status]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "NAP audit complete: %d businesses checked.\n\n", len(results))
	for _, status := range []model.AuditStatus{
		model.StatusAllGood,
		model.StatusNeedsUpdate,
		model.StatusNoMatch,
		model.StatusError,
	} {
		fmt.Fprintf(&b, "%-14s %d\n", string(status)+":", counts[status])
	}
	b.WriteString("\nThe full report is attached.\n")
	return b.String()
}
