package services

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"

	"admissions_app_go/config"
	"admissions_app_go/services/logger"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// EmailSender delivers a built email
type EmailSender interface {
	Send(ctx context.Context, email *Email) error
}

// ResendSender sends through the Resend API, or logs when EmailTestMode is on
type ResendSender struct {
	cfg    *config.Config
	client *resend.Client
}

// NewResendSender creates a sender from configuration
func NewResendSender(cfg *config.Config) *ResendSender {
	s := &ResendSender{cfg: cfg}
	if cfg.ResendAPIKey != "" {
		s.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return s
}

func (s *ResendSender) Send(ctx context.Context, email *Email) error {
	if s.cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.cfg.EmailFromName, s.cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	logger.L().Info("Email sent via Resend", zap.String("id", sent.Id), zap.Strings("to", email.To))
	return nil
}

// logEmailToConsole logs email details in development mode
func logEmailToConsole(email *Email) {
	logger.L().Info("EMAIL (development mode - not actually sent)",
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("text", email.TextBody),
		zap.String("html", truncate(email.HTMLBody, 500)),
	)
}

// truncate truncates a string to a maximum length
// truncate keeps at most maxLen runes so Hindi text is never cut mid-character
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

// EmailTemplates renders <name>[_<lang>].html and .txt from a filesystem,
// falling back to the base (English) file when no localized one exists.
type EmailTemplates struct {
	fsys fs.FS
	dir  string
}

func NewEmailTemplates(fsys fs.FS, dir string) *EmailTemplates {
	return &EmailTemplates{fsys: fsys, dir: dir}
}

func (t *EmailTemplates) read(name, lang, ext string) (string, []byte, error) {
	localized := path.Join(t.dir, fmt.Sprintf("%s_%s%s", name, lang, ext))
	if content, err := fs.ReadFile(t.fsys, localized); err == nil {
		return localized, content, nil
	}
	base := path.Join(t.dir, name+ext)
	content, err := fs.ReadFile(t.fsys, base)
	if err != nil {
		return base, nil, fmt.Errorf("failed to read template %s: %w", base, err)
	}
	return base, content, nil
}

// Render executes both bodies of a template
func (t *EmailTemplates) Render(name, lang string, data interface{}) (html string, text string, err error) {
	htmlPath, htmlSrc, err := t.read(name, lang, ".html")
	if err != nil {
		return "", "", err
	}
	htmlTmpl, err := htmltemplate.New(path.Base(htmlPath)).Parse(string(htmlSrc))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", htmlPath, err)
	}
	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", htmlPath, err)
	}

	textPath, textSrc, err := t.read(name, lang, ".txt")
	if err != nil {
		return "", "", err
	}
	textTmpl, err := texttemplate.New(path.Base(textPath)).Parse(string(textSrc))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", textPath, err)
	}
	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", textPath, err)
	}

	return htmlBuf.String(), strings.TrimSpace(textBuf.String()), nil
}

// Build renders a template into an Email addressed to toEmail
func (t *EmailTemplates) Build(name, lang, subject string, data interface{}, toEmail string) (*Email, error) {
	html, text, err := t.Render(name, lang, data)
	if err != nil {
		return nil, err
	}
	return &Email{
		To:       []string{toEmail},
		Subject:  subject,
		HTMLBody: html,
		TextBody: text,
	}, nil
}
