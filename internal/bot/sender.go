package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Sender is the slice of the Telegram client the handlers need. *tgbotapi.BotAPI
// satisfies it; tests substitute a recording fake.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// LimitedSender throttles outbound calls with a token bucket so bursts of
// notifications stay inside the Telegram flood limits. Exceeding the limit
// blocks the calling handler, not the whole process.
type LimitedSender struct {
	next Sender
	lim  *rate.Limiter
}

// NewLimitedSender wraps next with a limiter of rps tokens per second and the
// given burst size.
func NewLimitedSender(next Sender, rps float64, burst int) *LimitedSender {
	return &LimitedSender{next: next, lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Send waits for a token, then forwards to the wrapped sender.
func (s *LimitedSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := s.lim.Wait(context.Background()); err != nil {
		return tgbotapi.Message{}, err
	}
	return s.next.Send(c)
}

// Request waits for a token, then forwards to the wrapped sender.
func (s *LimitedSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if err := s.lim.Wait(context.Background()); err != nil {
		return nil, err
	}
	return s.next.Request(c)
}
