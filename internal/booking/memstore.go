package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is the in-memory Store used by tests and local runs without a
// database. It honors the same conditional-update semantics as the SQL store,
// including the atomic finalization claim.
type MemoryStore struct {
	mu       sync.Mutex
	sequence int64
	bookings map[string]*Booking
	payments []Payment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: make(map[string]*Booking),
	}
}

func (s *MemoryStore) Create(ctx context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequence++

	if b.Reference == "" {
		b.Reference = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = StatusDraft
	}
	if b.BookingNumber == "" {
		b.BookingNumber = FormatBookingNumber(time.Now().UTC().Year(), s.sequence)
	}

	b.ID = s.sequence
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt

	stored := *b
	s.bookings[b.Reference] = &stored

	return nil
}

func (s *MemoryStore) GetByReference(ctx context.Context, reference string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bookings[reference]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *stored
	return &copied, nil
}

func (s *MemoryStore) GetBySessionID(ctx context.Context, sessionID string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findLocked(func(b *Booking) bool {
		return b.PaymentSessionID != nil && *b.PaymentSessionID == sessionID
	})
}

func (s *MemoryStore) GetByPaymentIntentID(ctx context.Context, intentID string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findLocked(func(b *Booking) bool {
		return b.PaymentIntentID != nil && *b.PaymentIntentID == intentID
	})
}

func (s *MemoryStore) Transition(ctx context.Context, reference string, from, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bookings[reference]
	if !ok {
		return ErrNotFound
	}

	if stored.Status != from {
		return ErrConflict
	}

	stored.Status = to
	stored.UpdatedAt = time.Now().UTC()

	return nil
}

func (s *MemoryStore) AttachPaymentSession(ctx context.Context, reference, sessionID, intentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bookings[reference]
	if !ok {
		return ErrNotFound
	}

	stored.PaymentSessionID = &sessionID
	if intentID != "" {
		stored.PaymentIntentID = &intentID
	}
	stored.UpdatedAt = time.Now().UTC()

	return nil
}

func (s *MemoryStore) ClaimForFinalization(ctx context.Context, sessionID string, amountPaid float64, intentID string) (*Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var match *Booking
	for _, stored := range s.bookings {
		if stored.PaymentSessionID != nil && *stored.PaymentSessionID == sessionID {
			match = stored
			break
		}
	}

	if match == nil {
		return nil, false, ErrNotFound
	}

	if match.Status != StatusPaymentPending {
		copied := *match
		return &copied, false, nil
	}

	match.Status = StatusPaid
	match.AmountPaid = &amountPaid
	if intentID != "" {
		match.PaymentIntentID = &intentID
	}
	match.UpdatedAt = time.Now().UTC()

	copied := *match
	return &copied, true, nil
}

func (s *MemoryStore) SetReservationOutcome(ctx context.Context, reference string, status Status, supplierReference *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bookings[reference]
	if !ok {
		return ErrNotFound
	}

	stored.Status = status
	if supplierReference != nil {
		stored.SupplierReference = supplierReference
	}
	stored.UpdatedAt = time.Now().UTC()

	return nil
}

func (s *MemoryStore) AddPayment(ctx context.Context, payment Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment.ID = int64(len(s.payments) + 1)
	payment.CreatedAt = time.Now().UTC()
	s.payments = append(s.payments, payment)

	return nil
}

// Payments exposes the append-only payment rows for assertions.
func (s *MemoryStore) Payments() []Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]Payment, len(s.payments))
	copy(copied, s.payments)
	return copied
}

func (s *MemoryStore) ListByStatus(ctx context.Context, status Status) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings := []Booking{}
	for _, stored := range s.bookings {
		if stored.Status == status {
			bookings = append(bookings, *stored)
		}
	}

	return bookings, nil
}

func (s *MemoryStore) findLocked(match func(*Booking) bool) (*Booking, error) {
	for _, stored := range s.bookings {
		if match(stored) {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

var _ Store = (*MemoryStore)(nil)
