package notify

import (
	"context"

	"golang.org/x/time/rate"

	logx "pagewatch/pkg/logx"
)

// Service wraps a Sender with rate limiting (Telegram flood control) and
// structured logging. Transport failures surface as *DeliveryError so the
// orchestrator can inspect the outcome instead of discarding it.
type Service struct {
	sender  Sender
	limiter *rate.Limiter
	log     logx.Logger
}

func NewService(sender Sender, ratePerSec int, log logx.Logger) *Service {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		log:     log,
	}
}

func (s *Service) Notify(ctx context.Context, text string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return &DeliveryError{Err: err}
	}
	if err := s.sender.Notify(ctx, text); err != nil {
		s.log.Warn("notification send failed", logx.Err(err))
		return &DeliveryError{Err: err}
	}
	s.log.Debug("notification sent", logx.Int("chars", len(text)))
	return nil
}
