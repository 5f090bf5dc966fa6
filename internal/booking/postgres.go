package booking

import (
	"context"
	"database/sql"
	jsonEncoding "encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const bookingColumns = `
	id, reference, booking_number, booking_status,
	source, supplier_vehicle_id, supplier_reference,
	payment_session_id, payment_intent_id, amount_paid,
	customer, vehicle, breakdown, reservation_payload,
	affiliate_code, created_at, updated_at
`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, b *Booking) error {
	if b.Reference == "" {
		b.Reference = uuid.NewString()
	}

	if b.Status == "" {
		b.Status = StatusDraft
	}

	if b.BookingNumber == "" {
		var sequence int64
		err := s.db.QueryRowContext(ctx, `SELECT nextval('booking_number_seq')`).Scan(&sequence)
		if err != nil {
			return fmt.Errorf("allocating booking number: %w", err)
		}
		b.BookingNumber = FormatBookingNumber(time.Now().UTC().Year(), sequence)
	}

	customer, _ := jsonEncoding.Marshal(b.Customer)
	vehicle, _ := jsonEncoding.Marshal(b.Vehicle)
	breakdown, _ := jsonEncoding.Marshal(b.Breakdown)
	payload, _ := jsonEncoding.Marshal(b.ReservationPayload)

	query := `
	INSERT INTO bookings (
		reference, booking_number, booking_status,
		source, supplier_vehicle_id,
		customer, vehicle, breakdown, reservation_payload,
		affiliate_code, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
	RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		b.Reference, b.BookingNumber, b.Status,
		b.Source, b.SupplierVehicleID,
		customer, vehicle, breakdown, payload,
		b.AffiliateCode,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetByReference(ctx context.Context, reference string) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, reference))
}

func (s *PostgresStore) GetBySessionID(ctx context.Context, sessionID string) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_session_id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, sessionID))
}

func (s *PostgresStore) GetByPaymentIntentID(ctx context.Context, intentID string) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_intent_id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, intentID))
}

func (s *PostgresStore) Transition(ctx context.Context, reference string, from, to Status) error {
	query := `
	UPDATE bookings
	SET booking_status = $3, updated_at = now()
	WHERE reference = $1 AND booking_status = $2
	`

	result, err := s.db.ExecContext(ctx, query, reference, from, to)
	if err != nil {
		return fmt.Errorf("transitioning booking %s: %w", reference, err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		if _, err := s.GetByReference(ctx, reference); err != nil {
			return err
		}
		return ErrConflict
	}

	return nil
}

func (s *PostgresStore) AttachPaymentSession(ctx context.Context, reference, sessionID, intentID string) error {
	query := `
	UPDATE bookings
	SET payment_session_id = $2, payment_intent_id = NULLIF($3, ''), updated_at = now()
	WHERE reference = $1
	`

	result, err := s.db.ExecContext(ctx, query, reference, sessionID, intentID)
	if err != nil {
		return fmt.Errorf("attaching payment session to %s: %w", reference, err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ClaimForFinalization is the single write both completion signals race on.
// The conditional UPDATE decides the winner inside the database, there is no
// read-then-write window.
func (s *PostgresStore) ClaimForFinalization(ctx context.Context, sessionID string, amountPaid float64, intentID string) (*Booking, bool, error) {
	query := `
	UPDATE bookings
	SET booking_status = $2,
	    amount_paid = $3,
	    payment_intent_id = COALESCE(NULLIF($4, ''), payment_intent_id),
	    updated_at = now()
	WHERE payment_session_id = $1 AND booking_status = $5
	RETURNING ` + bookingColumns

	claimed, err := s.scanOne(s.db.QueryRowContext(ctx, query, sessionID, StatusPaid, amountPaid, intentID, StatusPaymentPending))
	if err == nil {
		return claimed, true, nil
	}
	if err != ErrNotFound {
		return nil, false, err
	}

	existing, err := s.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	return existing, false, nil
}

func (s *PostgresStore) SetReservationOutcome(ctx context.Context, reference string, status Status, supplierReference *string) error {
	query := `
	UPDATE bookings
	SET booking_status = $2,
	    supplier_reference = COALESCE($3, supplier_reference),
	    updated_at = now()
	WHERE reference = $1
	`

	result, err := s.db.ExecContext(ctx, query, reference, status, supplierReference)
	if err != nil {
		return fmt.Errorf("recording reservation outcome for %s: %w", reference, err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) AddPayment(ctx context.Context, payment Payment) error {
	query := `
	INSERT INTO booking_payments (booking_id, session_id, intent_id, signal, status, amount, currency, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	`

	_, err := s.db.ExecContext(ctx, query,
		payment.BookingID, payment.SessionID, payment.IntentID,
		payment.Signal, payment.Status, payment.Amount, payment.Currency,
	)
	if err != nil {
		return fmt.Errorf("inserting payment row: %w", err)
	}

	return nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_status = $1 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	defer rows.Close()

	bookings := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}

	return bookings, rows.Err()
}

func (s *PostgresStore) scanOne(row *sql.Row) (*Booking, error) {
	b, err := scanBooking(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBooking(scan func(...any) error) (*Booking, error) {
	var b Booking
	var customer, vehicle, breakdown, payload []byte
	var affiliateCode sql.NullString

	err := scan(
		&b.ID, &b.Reference, &b.BookingNumber, &b.Status,
		&b.Source, &b.SupplierVehicleID, &b.SupplierReference,
		&b.PaymentSessionID, &b.PaymentIntentID, &b.AmountPaid,
		&customer, &vehicle, &breakdown, &payload,
		&affiliateCode, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	jsonEncoding.Unmarshal(customer, &b.Customer)
	jsonEncoding.Unmarshal(vehicle, &b.Vehicle)
	jsonEncoding.Unmarshal(breakdown, &b.Breakdown)
	jsonEncoding.Unmarshal(payload, &b.ReservationPayload)
	b.AffiliateCode = affiliateCode.String

	return &b, nil
}

var _ Store = (*PostgresStore)(nil)
