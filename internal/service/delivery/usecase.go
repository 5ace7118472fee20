package delivery

import (
	"context"
	"crypto/subtle"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookbridge-delivery/internal/apperr"
	"bookbridge-delivery/internal/domain"
	"bookbridge-delivery/internal/gateway/payment"
	"bookbridge-delivery/internal/logx"
	"bookbridge-delivery/internal/notify"
	"bookbridge-delivery/internal/ports/deliverytx"
	"bookbridge-delivery/internal/ratelimit"
	"bookbridge-delivery/internal/tracking"
)

// Service - the delivery state machine. Every mutation of a delivery
// goes through one of its operations; each executes its read-check-write
// against the store inside a single transaction so the workflow
// invariants hold under concurrent callers.
type Service struct {
	repo             deliveryRepository
	agreements       agreementsGateway
	users            usersGateway
	payments         paymentGateway
	dispatcher       notify.Dispatcher
	codes            CodeGenerator
	verifyLimiter    ratelimit.Limiter
	verifyFails      counter
	policy           Policy
	operationTimeout time.Duration
	captureTimeout   time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// Options carries the optional dependencies of the delivery Service.
type Options struct {
	Dispatcher       notify.Dispatcher
	Codes            CodeGenerator
	VerifyLimiter    ratelimit.Limiter
	VerifyFails      counter
	Policy           Policy
	OperationTimeout time.Duration
	CaptureTimeout   time.Duration
}

// NewService - creates a new delivery Service.
func NewService(
	repo deliveryRepository,
	agreements agreementsGateway,
	users usersGateway,
	payments paymentGateway,
	logger logx.Logger,
	opts Options,
) *Service {
	if opts.Dispatcher == nil {
		opts.Dispatcher = notify.Nop()
	}
	if opts.Codes == nil {
		opts.Codes = NewCodeGenerator()
	}
	if opts.VerifyLimiter == nil {
		opts.VerifyLimiter = ratelimit.NewNopLimiter()
	}
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = 3 * time.Second
	}
	if opts.CaptureTimeout <= 0 {
		opts.CaptureTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             repo,
		agreements:       agreements,
		users:            users,
		payments:         payments,
		dispatcher:       opts.Dispatcher,
		codes:            opts.Codes,
		verifyLimiter:    opts.VerifyLimiter,
		verifyFails:      opts.VerifyFails,
		policy:           NewPolicy(opts.Policy.Ordering, opts.Policy.FeeAmount),
		operationTimeout: opts.OperationTimeout,
		captureTimeout:   opts.CaptureTimeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Create allocates a PENDING delivery for an accepted borrow agreement.
// Only the agreement's borrower may request delivery. The verification
// code is returned exactly once, to the borrower.
func (s *Service) Create(ctx context.Context, agreementID, requesterID int64, pickupAddress, deliveryAddress string) (domain.CreateResult, error) {
	pickupAddress = strings.TrimSpace(pickupAddress)
	deliveryAddress = strings.TrimSpace(deliveryAddress)
	if agreementID <= 0 || pickupAddress == "" || deliveryAddress == "" {
		return domain.CreateResult{}, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	agreement, err := s.agreements.Get(ctx, agreementID)
	if err != nil {
		return domain.CreateResult{}, err
	}
	if agreement == nil {
		return domain.CreateResult{}, apperr.ErrNotFound
	}
	if !agreement.Accepted() {
		return domain.CreateResult{}, apperr.ErrInvalidState
	}
	if agreement.BorrowerID != requesterID {
		return domain.CreateResult{}, apperr.ErrForbidden
	}

	now := s.now()
	d := domain.Delivery{
		ID:                uuid.NewString(),
		BorrowAgreementID: agreement.ID,
		BorrowerID:        agreement.BorrowerID,
		OwnerID:           agreement.OwnerID,
		PickupAddress:     pickupAddress,
		DeliveryAddress:   deliveryAddress,
		Status:            domain.StatusPending,
		VerificationCode:  s.codes.Generate(),
		PaymentStatus:     domain.PaymentPending,
		PaymentAmount:     s.policy.FeeAmount,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		existing, err := tx.GetByAgreementID(ctx, agreement.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.ErrConflict
		}
		return tx.Insert(ctx, &d)
	})
	if err != nil {
		return domain.CreateResult{}, err
	}

	s.logger.Info("delivery created",
		logx.String("event", "delivery_created"),
		logx.String("delivery_id", d.ID),
		logx.Int64("agreement_id", agreement.ID),
		logx.Int64("borrower_id", agreement.BorrowerID),
	)

	return domain.CreateResult{Delivery: d, VerificationCode: d.VerificationCode}, nil
}

// Assign atomically claims a PENDING delivery for an agent. Under the
// payment-first ordering the fee must be captured before the claim;
// under verification-first the agent claims an unpaid delivery and the
// borrower pays after the code is validated. Exactly one of N
// concurrent claimants wins; the rest get ErrConflict.
func (s *Service) Assign(ctx context.Context, deliveryID string, agentID int64) (domain.Delivery, error) {
	deliveryID, err := validateDeliveryID(deliveryID)
	if err != nil {
		return domain.Delivery{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result domain.Delivery
	err = s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := tx.GetByIDForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if d.Status != domain.StatusPending || d.Assigned() {
			return apperr.ErrConflict
		}
		if s.policy.Ordering == PaymentFirst && !d.Paid() {
			return apperr.ErrPaymentRequired
		}

		won, err := tx.Claim(ctx, deliveryID, agentID)
		if err != nil {
			return err
		}
		if !won {
			return apperr.ErrConflict
		}

		d.AgentID = &agentID
		d.Status = domain.StatusAssigned
		result = *d
		return nil
	})
	if err != nil {
		return domain.Delivery{}, err
	}

	s.logger.Info("delivery assigned",
		logx.String("event", "delivery_assigned"),
		logx.String("delivery_id", result.ID),
		logx.Int64("agent_id", agentID),
	)

	payload := notify.Payload{DeliveryID: result.ID}
	s.dispatcher.Notify(ctx, result.BorrowerID, notify.KindDeliveryAssigned, payload)
	s.dispatcher.Notify(ctx, result.OwnerID, notify.KindDeliveryAssigned, payload)

	return result, nil
}

// Pay captures the delivery fee with the payment processor. The capture
// call runs outside the delivery row lock; its idempotency per delivery
// makes a timeout-and-retry by the caller safe.
func (s *Service) Pay(ctx context.Context, deliveryID string, payerID int64, method string) (domain.PaymentResult, error) {
	deliveryID, err := validateDeliveryID(deliveryID)
	if err != nil {
		return domain.PaymentResult{}, err
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return domain.PaymentResult{}, apperr.ErrInvalid
	}

	lookupCtx, lookupCancel := s.withTimeout(ctx)
	d, err := s.repo.GetByID(lookupCtx, deliveryID)
	lookupCancel()
	if err != nil {
		return domain.PaymentResult{}, err
	}
	if d == nil {
		return domain.PaymentResult{}, apperr.ErrNotFound
	}
	if d.BorrowerID != payerID {
		return domain.PaymentResult{}, apperr.ErrForbidden
	}
	if d.Paid() {
		return domain.PaymentResult{}, apperr.ErrAlreadyPaid
	}
	if s.policy.Ordering == VerificationFirst && !d.CodeVerified() {
		return domain.PaymentResult{}, apperr.ErrVerificationRequired
	}

	captureCtx, cancel := context.WithTimeout(ctx, s.captureTimeout)
	receipt, captureErr := s.payments.Capture(captureCtx, d.ID, method, d.PaymentAmount)
	cancel()
	if captureErr != nil {
		if !payment.IsTransient(captureErr) {
			// explicit decline: record FAILED
			if err := s.markPayment(ctx, deliveryID, domain.PaymentFailed, nil); err != nil {
				s.logger.Error("mark payment failed",
					logx.String("delivery_id", deliveryID),
					logx.Err(err),
				)
			}
		}
		// transient outcome stays PENDING so a retry or a late webhook
		// can still resolve it
		return domain.PaymentResult{}, captureErr
	}

	if err := s.markPayment(ctx, deliveryID, domain.PaymentCompleted, &receipt.ID); err != nil {
		return domain.PaymentResult{}, err
	}

	d.PaymentStatus = domain.PaymentCompleted
	d.PaymentID = &receipt.ID

	s.logger.Info("delivery paid",
		logx.String("event", "delivery_paid"),
		logx.String("delivery_id", d.ID),
		logx.String("payment_id", receipt.ID),
	)

	return domain.PaymentResult{
		Delivery:  *d,
		PaymentID: receipt.ID,
		Amount:    d.PaymentAmount,
		Method:    method,
		PaidAt:    s.now(),
	}, nil
}

// markPayment writes a payment outcome. COMPLETED is sticky: once set
// it is never transitioned away, whatever a racing capture or webhook
// reports later.
func (s *Service) markPayment(ctx context.Context, deliveryID string, status domain.PaymentStatus, paymentID *string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := tx.GetByIDForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if d.Paid() {
			return nil
		}
		d.PaymentStatus = status
		if paymentID != nil {
			d.PaymentID = paymentID
		}
		return tx.Update(ctx, d)
	})
}

// Verify validates the code the borrower relayed to the assigned agent.
// Single use: success stamps codeVerifiedAt exactly once. Attempts are
// rate-limited per delivery and caller, so a stranger hammering the
// delivery id cannot starve the assigned agent out of the bucket.
func (s *Service) Verify(ctx context.Context, deliveryID string, agentID int64, submittedCode string) (domain.Delivery, error) {
	deliveryID, err := validateDeliveryID(deliveryID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if !validCodeFormat(submittedCode) {
		return domain.Delivery{}, apperr.ErrInvalidCode
	}

	if !s.verifyLimiter.Allow(verifyAttemptKey(deliveryID, agentID)) {
		if s.verifyFails != nil {
			s.verifyFails.Inc()
		}
		return domain.Delivery{}, apperr.ErrTooManyAttempts
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result domain.Delivery
	err = s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := tx.GetByIDForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if !d.AssignedTo(agentID) {
			return apperr.ErrForbidden
		}
		if d.CodeVerified() {
			return apperr.ErrAlreadyVerified
		}
		if s.policy.Ordering == PaymentFirst && !d.Paid() {
			return apperr.ErrPaymentRequired
		}

		if subtle.ConstantTimeCompare([]byte(d.VerificationCode), []byte(submittedCode)) != 1 {
			return apperr.ErrInvalidCode
		}

		verifiedAt := s.now()
		d.CodeVerifiedAt = &verifiedAt
		if err := tx.Update(ctx, d); err != nil {
			return err
		}
		result = *d
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCode) && s.verifyFails != nil {
			s.verifyFails.Inc()
		}
		return domain.Delivery{}, err
	}

	s.logger.Info("delivery code verified",
		logx.String("event", "delivery_code_verified"),
		logx.String("delivery_id", result.ID),
		logx.Int64("agent_id", agentID),
	)

	return result, nil
}

// UpdateStatus advances the delivery along the custody transition
// graph. Only the assigned agent may advance it; the payment and
// verification gates are rechecked at every step.
func (s *Service) UpdateStatus(ctx context.Context, deliveryID string, agentID int64, newStatus domain.DeliveryStatus, notes string) (domain.Delivery, error) {
	deliveryID, err := validateDeliveryID(deliveryID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if !newStatus.Valid() {
		return domain.Delivery{}, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result domain.Delivery
	err = s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := tx.GetByIDForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if !d.AssignedTo(agentID) {
			return apperr.ErrForbidden
		}
		if !d.Paid() {
			return apperr.ErrPaymentRequired
		}
		if newStatus.RequiresVerifiedCode() && !d.CodeVerified() {
			return apperr.ErrVerificationRequired
		}
		if !d.Status.CanTransitionTo(newStatus) {
			return apperr.ErrInvalidTransition
		}

		now := s.now()
		d.Status = newStatus
		if newStatus == domain.StatusPickedUp && d.PickupCompletedAt == nil {
			d.PickupCompletedAt = &now
		}
		if newStatus == domain.StatusDelivered && d.DeliveryCompletedAt == nil {
			d.DeliveryCompletedAt = &now
		}
		if notes = strings.TrimSpace(notes); notes != "" {
			d.TrackingNotes = notes
		}
		if err := tx.Update(ctx, d); err != nil {
			return err
		}
		result = *d
		return nil
	})
	if err != nil {
		return domain.Delivery{}, err
	}

	s.logger.Info("delivery status updated",
		logx.String("event", "delivery_status_updated"),
		logx.String("delivery_id", result.ID),
		logx.String("status", string(result.Status)),
	)

	switch result.Status {
	case domain.StatusPickedUp:
		s.dispatcher.Notify(ctx, result.BorrowerID, notify.KindDeliveryPickedUp, notify.Payload{DeliveryID: result.ID})
	case domain.StatusDelivered:
		s.dispatcher.Notify(ctx, result.BorrowerID, notify.KindDeliveryDelivered, notify.Payload{DeliveryID: result.ID})
	}

	return result, nil
}

// Cancel moves a delivery to the terminal CANCELLED state. Allowed for
// the borrower or the assigned agent while custody has not transferred.
func (s *Service) Cancel(ctx context.Context, deliveryID string, actorID int64) (domain.Delivery, error) {
	deliveryID, err := validateDeliveryID(deliveryID)
	if err != nil {
		return domain.Delivery{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result domain.Delivery
	err = s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := tx.GetByIDForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if d.BorrowerID != actorID && !d.AssignedTo(actorID) {
			return apperr.ErrForbidden
		}
		if !d.Status.Cancellable() {
			return apperr.ErrInvalidTransition
		}

		d.Status = domain.StatusCancelled
		if err := tx.Update(ctx, d); err != nil {
			return err
		}
		result = *d
		return nil
	})
	if err != nil {
		return domain.Delivery{}, err
	}

	s.logger.Info("delivery cancelled",
		logx.String("event", "delivery_cancelled"),
		logx.String("delivery_id", result.ID),
		logx.Int64("actor_id", actorID),
	)

	return result, nil
}

// Track derives the redacted tracking view of a delivery for a viewer
// who is a party to it.
func (s *Service) Track(ctx context.Context, deliveryID string, viewerID int64) (tracking.View, error) {
	deliveryID, err := validateDeliveryID(deliveryID)
	if err != nil {
		return tracking.View{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.repo.GetByID(ctx, deliveryID)
	if err != nil {
		return tracking.View{}, err
	}
	if d == nil {
		return tracking.View{}, apperr.ErrNotFound
	}
	if !d.PartyTo(viewerID) {
		return tracking.View{}, apperr.ErrForbidden
	}

	meta := s.trackingMeta(ctx, d)
	return tracking.Project(*d, meta), nil
}

// trackingMeta resolves display attributes best-effort: a failed
// lookup degrades the view instead of failing the request.
func (s *Service) trackingMeta(ctx context.Context, d *domain.Delivery) tracking.Meta {
	var meta tracking.Meta

	agreement, err := s.agreements.Get(ctx, d.BorrowAgreementID)
	if err != nil {
		s.logger.Warn("tracking: agreement lookup failed",
			logx.String("delivery_id", d.ID),
			logx.Err(err),
		)
	} else if agreement != nil {
		meta.BookTitle = agreement.BookTitle
		meta.BookAuthor = agreement.BookAuthor
		meta.BorrowerName = agreement.BorrowerName
		meta.OwnerName = agreement.OwnerName
	}

	if d.Assigned() && s.users != nil {
		name, err := s.users.DisplayName(ctx, *d.AgentID)
		if err != nil {
			s.logger.Warn("tracking: agent lookup failed",
				logx.String("delivery_id", d.ID),
				logx.Err(err),
			)
		} else {
			meta.AgentName = name
		}
	}

	return meta
}

// ListAvailable returns unclaimed PENDING deliveries for agents to
// pick from; under the payment-first ordering only paid ones are
// offered. Verification codes are blanked: only the borrower and the
// verify flow ever see them.
func (s *Service) ListAvailable(ctx context.Context) ([]domain.Delivery, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.repo.ListAvailable(ctx, s.policy.Ordering == PaymentFirst)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].VerificationCode = ""
	}
	return out, nil
}

func verifyAttemptKey(deliveryID string, agentID int64) string {
	return deliveryID + ":" + strconv.FormatInt(agentID, 10)
}

func validateDeliveryID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", apperr.ErrInvalid
	}
	return id, nil
}

// validCodeFormat requires exactly 6 ASCII digits.
func validCodeFormat(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
