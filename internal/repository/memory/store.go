package memory

import (
	"context"
	"fmt"
	"sync"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/repository/contract"
	"cleaning-booking-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Store is a process-local replacement for Postgres used by local runs
// (STORAGE_DRIVER=memory) and by package tests. It enforces the same unique
// constraints as the SQL schema.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	bookings      map[uuid.UUID]entity.Booking
	referralUsers map[uuid.UUID]entity.ReferralUser
	levels        map[uuid.UUID]entity.ReferralLevel
	referrals     map[uuid.UUID]entity.Referral
	promoCodes    map[uuid.UUID]entity.PromoCode
	webhookEvents map[string]entity.WebhookEvent
}

func NewStore() *Store {
	return &Store{
		bookings:      make(map[uuid.UUID]entity.Booking),
		referralUsers: make(map[uuid.UUID]entity.ReferralUser),
		levels:        make(map[uuid.UUID]entity.ReferralLevel),
		referrals:     make(map[uuid.UUID]entity.Referral),
		promoCodes:    make(map[uuid.UUID]entity.PromoCode),
		webhookEvents: make(map[string]entity.WebhookEvent),
	}
}

// track records how to put key in m back to its current value if the
// transaction rolls back. Callers hold store.mu. Writes made outside a
// transaction are not journalled, so a rollback never touches them.
func track[K comparable, V any](u *unitOfWork, m map[K]V, key K) {
	if u == nil || !u.active {
		return
	}
	prev, existed := m[key]
	u.undo = append(u.undo, func() {
		if existed {
			m[key] = prev
		} else {
			delete(m, key)
		}
	})
}

// ReferralCount is a test helper returning the number of stored referral rows.
func (s *Store) ReferralCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.referrals)
}

type repositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &repositoryFactory{store: store}
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

// unitOfWork serialises transactions on txMu, which stands in for the row
// locks taken by the SQL implementation. Rollback replays the undo journal of
// this transaction's own writes in reverse.
type unitOfWork struct {
	store  *Store
	active bool
	undo   []func()
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}
	u.store.txMu.Lock()
	u.active = true
	u.undo = nil
	return nil
}

func (u *unitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}
	u.active = false
	u.undo = nil
	u.store.txMu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback() error {
	if !u.active {
		return fmt.Errorf("no transaction to rollback")
	}
	u.store.mu.Lock()
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.store.mu.Unlock()
	u.active = false
	u.undo = nil
	u.store.txMu.Unlock()
	return nil
}

func (u *unitOfWork) BookingRepository() contract.BookingRepository {
	return &bookingRepository{store: u.store, tx: u}
}

func (u *unitOfWork) ReferralUserRepository() contract.ReferralUserRepository {
	return &referralUserRepository{store: u.store, tx: u}
}

func (u *unitOfWork) ReferralLevelRepository() contract.ReferralLevelRepository {
	return &referralLevelRepository{store: u.store, tx: u}
}

func (u *unitOfWork) ReferralRepository() contract.ReferralRepository {
	return &referralRepository{store: u.store, tx: u}
}

func (u *unitOfWork) PromoCodeRepository() contract.PromoCodeRepository {
	return &promoCodeRepository{store: u.store, tx: u}
}

func (u *unitOfWork) WebhookEventRepository() contract.WebhookEventRepository {
	return &webhookEventRepository{store: u.store, tx: u}
}
