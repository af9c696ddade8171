package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	TLSModeStartTLS = "starttls"
	TLSModeTLS      = "tls"
	TLSModeNone     = "none"
)

// SMTPMailer delivers messages over SMTP with PLAIN auth
type SMTPMailer struct {
	cfg     config.SMTPConfig
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
	// tlsConfig is cloned per connection; tests swap in a trusting config
	tlsConfig *tls.Config
}

// NewSMTPMailer creates a mailer from config
func NewSMTPMailer(cfg config.SMTPConfig, log *zap.Logger) *SMTPMailer {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPMailer{
		cfg:       cfg,
		logger:    log.Named("mailer"),
		timeout:   timeout,
		now:       time.Now,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
	}
}

// New returns an SMTP sender when enabled, otherwise a logging no-op
func New(cfg config.SMTPConfig, log *zap.Logger) Sender {
	if !cfg.Enabled {
		return NewDisabled(log)
	}
	return NewSMTPMailer(cfg, log)
}

// Send delivers m, filling the sender from config when unset
func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	if m.From == "" {
		m.From = s.cfg.From
		if m.FromName == "" {
			m.FromName = s.cfg.FromName
		}
	}

	raw, err := buildMIME(m, s.cfg.Host, s.now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.deliver(ctx, m.From, m.To, raw); err != nil {
		logger.Or(ctx, s.logger).Warn("Email delivery failed",
			zap.String("subject", m.Subject),
			zap.Int("recipients", len(m.To)),
			zap.Error(err),
		)
		return err
	}

	logger.Or(ctx, s.logger).Info("Email sent",
		zap.String("subject", m.Subject),
		zap.Int("recipients", len(m.To)),
	)
	return nil
}

func (s *SMTPMailer) deliver(ctx context.Context, from string, to []string, raw []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial failed: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	mode := strings.ToLower(s.cfg.TLSMode)
	if mode == TLSModeTLS {
		tlsConn := tls.Client(conn, s.tlsConfig.Clone())
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return fmt.Errorf("smtp tls handshake failed: %w", err)
		}
		conn = tlsConn
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp new client failed: %w", err)
	}
	defer c.Close()

	if mode == TLSModeStartTLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return fmt.Errorf("smtp starttls not supported by server")
		}
		if err := c.StartTLS(s.tlsConfig.Clone()); err != nil {
			return fmt.Errorf("smtp starttls failed: %w", err)
		}
	}

	if s.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
				return fmt.Errorf("smtp auth failed: %w", err)
			}
		}
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from failed: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt failed (%s): %w", logger.MaskEmail(rcpt), err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data failed: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close failed: %w", err)
	}
	return c.Quit()
}

var _ Sender = (*SMTPMailer)(nil)
