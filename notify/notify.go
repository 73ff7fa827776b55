package notify

import (
	"bytes"
	"text/template"

	"mediaalbums/logger"

	"go.uber.org/zap"
	mail "gopkg.in/mail.v2"
)

type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer delivers messages through an SMTP relay
type SMTPMailer struct {
	dialer *mail.Dialer
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{dialer: mail.NewDialer(host, port, username, password)}
}

func (m *SMTPMailer) Send(msg Message) error {
	return m.dialer.DialAndSend(buildMessage(msg))
}

func buildMessage(msg Message) *mail.Message {
	email := mail.NewMessage()
	email.SetHeader("From", msg.From)
	email.SetHeader("To", msg.To...)
	email.SetHeader("Subject", msg.Subject)
	email.SetBody("text/plain", msg.Body)
	return email
}

// LogMailer only logs, for setups without SMTP
type LogMailer struct{}

func (LogMailer) Send(msg Message) error {
	logger.L().Info("mail not sent, no SMTP configured",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

var uploadedBody = template.Must(template.New("uploaded").Parse(
	`A new photo "{{.Name}}" was uploaded{{with .By}} by {{.}}{{end}} and is waiting for approval.

Review pending photos: {{.ReviewURL}}
`))

type UploadNotice struct {
	Name      string
	By        string
	ReviewURL string
}

// PhotoUploaded tells the site operator about a new submission
func PhotoUploaded(m Mailer, from string, notice UploadNotice) error {
	var body bytes.Buffer
	if err := uploadedBody.Execute(&body, notice); err != nil {
		return err
	}
	return m.Send(Message{
		From:    from,
		To:      []string{from},
		Subject: "New user photo uploaded",
		Body:    body.String(),
	})
}
