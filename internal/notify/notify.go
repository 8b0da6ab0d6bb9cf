// Package notify mails the backfill summary to operators. Scheduled
// runs have nobody watching stdout, so failures surface over SMTP.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

type SMTPConfig struct {
	Server   string   `json:"server"`
	Port     int      `json:"port"`
	Address  string   `json:"address"`
	Password string   `json:"password"`
	To       []string `json:"to"`
}

func (c SMTPConfig) Enabled() bool {
	return c.Server != "" && len(c.To) > 0
}

// SendReport delivers the plain-text summary. Some relays reject
// AUTH; those get one retry without it.
func SendReport(cfg SMTPConfig, subject, body string) error {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("timesales scraper <%s>", cfg.Address)
	mail.To = cfg.To
	mail.Subject = subject
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", cfg.Server, cfg.Port)
	err := mail.Send(addr, smtp.PlainAuth("", cfg.Address, cfg.Password, cfg.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		return mail.Send(addr, nil)
	}
	return err
}
