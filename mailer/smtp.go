package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"mime/quotedprintable"
	"net/smtp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var codeTemplate = template.Must(template.New("code").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h2 style="color: #333;">{{ .Title }}</h2>
  <p style="font-size: 16px; color: #666;">Your code is:</p>
  <div style="background-color: #f5f5f5; padding: 10px; text-align: center; font-size: 24px; letter-spacing: 5px; font-weight: bold; margin: 20px 0;">{{ .Code }}</div>
  <p style="font-size: 14px; color: #999;">This code will expire in {{ .Minutes }} minutes.</p>
  <p style="font-size: 14px; color: #999;">If you didn't request this code, please ignore this email.</p>
</div>`))

type SMTPConfig struct {
	Hostname string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// CodeTTL is only used to tell the recipient how long the code lasts.
	CodeTTL time.Duration
}

func (c SMTPConfig) Validate() error {
	errs := []error{}
	if c.Hostname == "" {
		errs = append(errs, fmt.Errorf("missing smtp hostname"))
	}
	if c.Port == 0 {
		errs = append(errs, fmt.Errorf("missing smtp port"))
	}
	if c.sender() == "" {
		errs = append(errs, fmt.Errorf("missing sender address"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (c SMTPConfig) sender() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends codes through an authenticated SMTP relay.
type SMTPSender struct {
	cfg  SMTPConfig
	send sendFunc
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid smtp configuration: %w", err)
	}
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}, nil
}

func (s *SMTPSender) SendCode(ctx context.Context, to, code string, purpose Purpose) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := s.compose(to, code, purpose)
	if err != nil {
		return err
	}
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Hostname)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Hostname, s.cfg.Port)
	if err := s.send(addr, auth, s.cfg.sender(), []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	logrus.WithFields(logrus.Fields{"to": to, "purpose": purpose}).Debug("code email sent")
	return nil
}

func (s *SMTPSender) compose(to, code string, purpose Purpose) ([]byte, error) {
	minutes := int(s.cfg.CodeTTL.Minutes())
	if minutes <= 0 {
		minutes = 5
	}
	var body bytes.Buffer
	if err := codeTemplate.Execute(&body, map[string]any{
		"Title":   strings.TrimPrefix(purpose.Subject(), "Your "),
		"Code":    code,
		"Minutes": minutes,
	}); err != nil {
		return nil, fmt.Errorf("failed to render email: %w", err)
	}

	from := s.cfg.sender()
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, from)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", purpose.Subject())
	fmt.Fprint(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprint(&buf, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprint(&buf, "Content-Transfer-Encoding: quoted-printable\r\n\r\n")
	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write(body.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to encode email: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode email: %w", err)
	}
	return buf.Bytes(), nil
}
