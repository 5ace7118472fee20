package payments

import (
	"context"
	"strings"

	"bookbridge-delivery/internal/domain"
	"bookbridge-delivery/internal/logx"
	"bookbridge-delivery/internal/ports/deliverytx"
)

type actionFunc func(context.Context, Event) error

// Processor applies payment events to deliveries. It is the single
// consumer behind both the webhook endpoint and the Kafka worker, so
// both paths share one deduplication and settlement rule.
type Processor struct {
	repo   TxRunner
	logger logx.Logger
	byType map[string]actionFunc
}

// NewProcessor creates a new payments.Processor.
func NewProcessor(repo TxRunner, logger logx.Logger) *Processor {
	if logger == nil {
		logger = logx.Nop()
	}
	p := &Processor{
		repo:   repo,
		logger: logger,
	}
	p.byType = map[string]actionFunc{
		TypeCaptured: p.onCaptured,
		TypeFailed:   p.onFailed,
	}
	return p
}

// Handle processes a single payment Event. Unknown event types and
// events referencing unknown deliveries are skipped, not failed: the
// processor feed carries traffic for other consumers too.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	if e.ID == "" || e.OrderRef == "" {
		p.logger.Warn("payment event missing id or order ref, skipping",
			logx.String("event_id", e.ID),
		)
		return nil
	}
	fn, ok := p.byType[strings.ToLower(strings.TrimSpace(e.Type))]
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onCaptured(ctx context.Context, e Event) error {
	return p.settle(ctx, e, domain.PaymentCompleted)
}

func (p *Processor) onFailed(ctx context.Context, e Event) error {
	return p.settle(ctx, e, domain.PaymentFailed)
}

// settle marks the event processed and applies the outcome in one
// transaction. A redelivered event sees its ID already recorded and
// becomes a no-op. COMPLETED never regresses, whatever order the
// capture response and the event arrive in.
func (p *Processor) settle(ctx context.Context, e Event, status domain.PaymentStatus) error {
	var applied bool
	err := p.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		first, err := tx.MarkPaymentEventProcessed(ctx, e.ID)
		if err != nil {
			return err
		}
		if !first {
			return nil
		}

		d, err := tx.GetByIDForUpdate(ctx, e.OrderRef)
		if err != nil {
			return err
		}
		if d == nil {
			p.logger.Warn("payment event for unknown delivery",
				logx.String("event_id", e.ID),
				logx.String("order_ref", e.OrderRef),
			)
			return nil
		}
		if d.PaymentStatus == domain.PaymentCompleted {
			return nil
		}

		d.PaymentStatus = status
		if e.PaymentID != "" {
			d.PaymentID = &e.PaymentID
		}
		if err := tx.Update(ctx, d); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return err
	}

	if applied {
		p.logger.Info("payment event applied",
			logx.String("event", "payment_event_applied"),
			logx.String("event_id", e.ID),
			logx.String("delivery_id", e.OrderRef),
			logx.String("payment_status", string(status)),
		)
	}
	return nil
}
