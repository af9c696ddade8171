// Package mailer sends transactional email: purchase confirmations, gift
// notices, failed-payment notices and prospect welcomes.
package mailer

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Sender delivers a single message
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Attachment is a file carried with a message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an outbound email. From defaults to the mailer's sender.
type Message struct {
	FromName string
	From     string
	To       []string
	ReplyTo  string
	Subject  string

	TextBody string
	HTMLBody string

	Attachments []Attachment
}

// Disabled logs messages instead of sending them. It is used when SMTP is
// switched off so confirmation flows still run end to end.
type Disabled struct {
	logger *zap.Logger
}

// NewDisabled creates a Disabled sender
func NewDisabled(logger *zap.Logger) *Disabled {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Disabled{logger: logger.Named("mailer")}
}

func (d *Disabled) Send(_ context.Context, m Message) error {
	d.logger.Info("Email not sent, SMTP disabled",
		zap.Int("recipients", len(m.To)),
		zap.String("subject", m.Subject),
		zap.Int("attachments", len(m.Attachments)),
	)
	return nil
}

// Mock records messages for tests
type Mock struct {
	mu   sync.Mutex
	Sent []Message
	Err  error
}

func (m *Mock) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return m.Err
}

// Messages returns a copy of what was sent
func (m *Mock) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.Sent...)
}

var (
	_ Sender = (*Disabled)(nil)
	_ Sender = (*Mock)(nil)
)
