package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"
)

// ErrTransport indicates the message could not be handed to the SMTP server.
var ErrTransport = errors.New("smtp send failed")

// Sender delivers a single message. Implementations must be safe for
// sequential use by one job worker.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the SMTP connection and throughput settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	RateLimit     float64 // 每秒最多发送的邮件数，<=0 表示不限速
	RetryAttempts int     // 首次发送失败后的重试次数
	RetryInterval time.Duration
}

// SMTPSender sends messages through gomail with retry and rate limiting.
type SMTPSender struct {
	from      string
	transport gomail.Sender
	dialer    *gomail.Dialer
	limiter   *rate.Limiter
	retries   uint64
	interval  time.Duration
	logger    *zap.Logger
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender dials cfg.Host for every message.
func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) *SMTPSender {
	s := newSender(cfg, logger)
	s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return s
}

// NewSenderWithTransport sends through an already established gomail.Sender
// (for example a gomail.SendFunc).
func NewSenderWithTransport(cfg SMTPConfig, transport gomail.Sender, logger *zap.Logger) *SMTPSender {
	s := newSender(cfg, logger)
	s.transport = transport
	return s
}

func newSender(cfg SMTPConfig, logger *zap.Logger) *SMTPSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	retries := cfg.RetryAttempts
	if retries < 0 {
		retries = 0
	}
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &SMTPSender{
		from:     cfg.From,
		limiter:  rate.NewLimiter(limit, 1),
		retries:  uint64(retries),
		interval: interval,
		logger:   logger.With(zap.String("component", "smtp")),
	}
}

// Send waits for the rate limiter, then sends msg with exponential backoff.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("%w: no recipients", ErrAddress)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	m := msg.build(s.from)
	attempt := 0
	operation := func() error {
		attempt++
		err := s.deliver(m)
		if err != nil {
			s.logger.Warn("send attempt failed",
				zap.Strings("to", msg.To),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.interval
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, s.retries), ctx)); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	s.logger.Debug("email sent", zap.Strings("to", msg.To), zap.Int("attempts", attempt))
	return nil
}

func (s *SMTPSender) deliver(m *gomail.Message) error {
	if s.transport != nil {
		return gomail.Send(s.transport, m)
	}
	return s.dialer.DialAndSend(m)
}
