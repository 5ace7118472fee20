package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookbridge-delivery/internal/apperr"
	"bookbridge-delivery/internal/domain"
	"bookbridge-delivery/internal/ports/deliverytx"
)

const deliveryColumns = `
    id, borrow_agreement_id, borrower_id, owner_id, agent_id,
    pickup_address, delivery_address, status, verification_code,
    code_verified_at, payment_status, payment_amount, payment_id,
    tracking_notes, created_at, updated_at,
    pickup_completed_at, delivery_completed_at`

// DeliveryRepo represents delivery repository.
type DeliveryRepo struct {
	db *pgxpool.Pool
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(db *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *DeliveryRepo) WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			err = tx.Rollback(ctx)
			if err != nil {
				panic(err)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID - returns a delivery by its ID, nil if it does not exist.
func (r *DeliveryRepo) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, `SELECT`+deliveryColumns+` FROM deliveries WHERE id = $1`, id)
	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery %q: %w", id, err)
	}
	return d, nil
}

// ListAvailable returns unclaimed PENDING deliveries oldest first,
// optionally restricted to paid ones.
func (r *DeliveryRepo) ListAvailable(ctx context.Context, requirePaid bool) ([]domain.Delivery, error) {
	rows, err := r.db.Query(ctx, `
        SELECT`+deliveryColumns+`
        FROM deliveries
        WHERE status = $1
          AND agent_id IS NULL
          AND ($2 = false OR payment_status = $3)
        ORDER BY created_at ASC
    `, string(domain.StatusPending), requirePaid, string(domain.PaymentCompleted))
	if err != nil {
		return nil, fmt.Errorf("list available deliveries: %w", err)
	}
	defer rows.Close()

	var out []domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

// GetByIDForUpdate - returns a delivery by ID with a row lock, nil if absent.
func (r *TxRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Delivery, error) {
	row := r.tx.QueryRow(ctx, `SELECT`+deliveryColumns+` FROM deliveries WHERE id = $1 FOR UPDATE`, id)
	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery %q for update: %w", id, err)
	}
	return d, nil
}

// GetByAgreementID - returns the delivery for a borrow agreement, nil if absent.
func (r *TxRepo) GetByAgreementID(ctx context.Context, agreementID int64) (*domain.Delivery, error) {
	row := r.tx.QueryRow(ctx, `SELECT`+deliveryColumns+` FROM deliveries WHERE borrow_agreement_id = $1`, agreementID)
	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery by agreement %d: %w", agreementID, err)
	}
	return d, nil
}

// Insert - inserts a new delivery. A duplicate borrow agreement id
// violates the unique index and is reported via IsDuplicate.
func (r *TxRepo) Insert(ctx context.Context, d *domain.Delivery) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO deliveries (
            id, borrow_agreement_id, borrower_id, owner_id,
            pickup_address, delivery_address, status, verification_code,
            payment_status, payment_amount, tracking_notes, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
    `, d.ID, d.BorrowAgreementID, d.BorrowerID, d.OwnerID,
		d.PickupAddress, d.DeliveryAddress, string(d.Status), d.VerificationCode,
		string(d.PaymentStatus), d.PaymentAmount, d.TrackingNotes, d.CreatedAt)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("insert delivery %q: %w", d.ID, err)
	}
	return nil
}

// Claim - atomically claims a PENDING, unassigned delivery for an
// agent. Returns false when another agent won the race.
func (r *TxRepo) Claim(ctx context.Context, id string, agentID int64) (bool, error) {
	ct, err := r.tx.Exec(ctx, `
        UPDATE deliveries
        SET agent_id = $2, status = $3, updated_at = now()
        WHERE id = $1
          AND status = $4
          AND agent_id IS NULL
    `, id, agentID, string(domain.StatusAssigned), string(domain.StatusPending))
	if err != nil {
		return false, fmt.Errorf("claim delivery %q: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// Update - writes back mutable delivery fields.
func (r *TxRepo) Update(ctx context.Context, d *domain.Delivery) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE deliveries
        SET status = $2,
            code_verified_at = $3,
            payment_status = $4,
            payment_id = $5,
            tracking_notes = $6,
            pickup_completed_at = $7,
            delivery_completed_at = $8,
            updated_at = now()
        WHERE id = $1
    `, d.ID, string(d.Status), d.CodeVerifiedAt, string(d.PaymentStatus),
		d.PaymentID, d.TrackingNotes, d.PickupCompletedAt, d.DeliveryCompletedAt)
	if err != nil {
		return fmt.Errorf("update delivery %q: %w", d.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("delivery %q not found", d.ID)
	}
	return nil
}

// MarkPaymentEventProcessed records a processed payment event id and
// returns false when the event was seen before.
func (r *TxRepo) MarkPaymentEventProcessed(ctx context.Context, eventID string) (bool, error) {
	ct, err := r.tx.Exec(ctx, `
        INSERT INTO processed_payment_events (event_id, processed_at)
        VALUES ($1, now())
        ON CONFLICT (event_id) DO NOTHING
    `, eventID)
	if err != nil {
		return false, fmt.Errorf("mark payment event %q: %w", eventID, err)
	}
	return ct.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row rowScanner) (*domain.Delivery, error) {
	var (
		d             domain.Delivery
		status        string
		paymentStatus string
	)
	err := row.Scan(
		&d.ID, &d.BorrowAgreementID, &d.BorrowerID, &d.OwnerID, &d.AgentID,
		&d.PickupAddress, &d.DeliveryAddress, &status, &d.VerificationCode,
		&d.CodeVerifiedAt, &paymentStatus, &d.PaymentAmount, &d.PaymentID,
		&d.TrackingNotes, &d.CreatedAt, &d.UpdatedAt,
		&d.PickupCompletedAt, &d.DeliveryCompletedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Status = domain.DeliveryStatus(status)
	d.PaymentStatus = domain.PaymentStatus(paymentStatus)
	return &d, nil
}
