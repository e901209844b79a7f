package services

import (
	"fmt"
	"net/smtp"
	"strings"
)

// BookingEmail carries everything the outbound templates need.
type BookingEmail struct {
	To        string
	FullName  string
	Room      string
	Machine   string
	Date      string
	StartTime string
	EndTime   string
	Duration  int
	Reason    string
}

// Mailer sends booking lifecycle emails. Every send is best-effort: callers
// log failures and move on, they never propagate them.
type Mailer interface {
	SendConfirmation(data BookingEmail) error
	SendCancellation(data BookingEmail) error
	SendDeletion(data BookingEmail) error
}

// SMTPMailer sends email via unauthenticated SMTP (Mailpit-compatible).
type SMTPMailer struct {
	addr string
	from string
}

func NewSMTPMailer(host string, port string, from string) *SMTPMailer {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@spalatorie-camin.ro"
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%s", host, port),
		from: from,
	}
}

func (m *SMTPMailer) SendConfirmation(data BookingEmail) error {
	subject := fmt.Sprintf("Rezervare confirmată: %s, %s", data.Machine, data.Date)
	body := fmt.Sprintf(
		"Salut %s,\n\nRezervarea ta a fost înregistrată.\n\nMașina: %s\nData: %s\nOra de început: %s\nDurata: %d minute\nCamera: %s\n\nSpor la spălat!",
		data.FullName, data.Machine, data.Date, data.StartTime, data.Duration, data.Room,
	)
	return m.send(data.To, subject, body)
}

func (m *SMTPMailer) SendCancellation(data BookingEmail) error {
	subject := fmt.Sprintf("Rezervare anulată: %s, %s", data.Machine, data.Date)
	body := fmt.Sprintf(
		"Salut %s,\n\nRezervarea ta pentru %s din data %s (%s - %s) a fost anulată.\nMotiv: %s\n\nPoți face oricând o nouă rezervare.",
		data.FullName, data.Machine, data.Date, data.StartTime, data.EndTime, data.Reason,
	)
	return m.send(data.To, subject, body)
}

func (m *SMTPMailer) SendDeletion(data BookingEmail) error {
	subject := fmt.Sprintf("Rezervare ștearsă: %s, %s", data.Machine, data.Date)
	body := fmt.Sprintf(
		"Salut %s,\n\nRezervarea ta pentru %s din data %s (începând cu %s, %d minute) a fost ștearsă de un administrator.\nMotiv: %s",
		data.FullName, data.Machine, data.Date, data.StartTime, data.Duration, data.Reason,
	)
	return m.send(data.To, subject, body)
}

func (m *SMTPMailer) send(to string, subject string, body string) error {
	if strings.TrimSpace(to) == "" {
		return &NotificationError{Op: "send email", Err: fmt.Errorf("no recipient address")}
	}
	msg := buildMessage(m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg)); err != nil {
		return &NotificationError{Op: "send email to " + to, Err: err}
	}
	return nil
}

func buildMessage(from, to, subject, body string) string {
	// Minimal RFC 5322 message; enough for Mailpit and most SMTP relays.
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		subject,
		body,
	)
}
