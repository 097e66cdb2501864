package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func cloneBooking(b entity.Booking) *entity.Booking {
	if b.Extras != nil {
		b.Extras = append([]string(nil), b.Extras...)
	}
	return &b
}

type bookingRepository struct {
	store *Store
	tx    *unitOfWork
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.bookings {
		if b.BookingCode == booking.BookingCode {
			return contract.ErrDuplicate
		}
	}
	if booking.Id == uuid.Nil {
		booking.Id = uuid.New()
	}
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	track(r.tx, r.store.bookings, booking.Id)
	r.store.bookings[booking.Id] = *cloneBooking(*booking)
	return nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	booking.UpdatedAt = time.Now()
	track(r.tx, r.store.bookings, booking.Id)
	r.store.bookings[booking.Id] = *cloneBooking(*booking)
	return nil
}

func (r *bookingRepository) UpdateGatewaySession(ctx context.Context, id uuid.UUID, sessionId string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil
	}
	track(r.tx, r.store.bookings, id)
	b.GatewaySessionId = &sessionId
	b.UpdatedAt = time.Now()
	r.store.bookings[id] = b
	return nil
}

func (r *bookingRepository) find(match func(entity.Booking) bool) *entity.Booking {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var found *entity.Booking
	for _, b := range r.store.bookings {
		if match(b) && (found == nil || b.CreatedAt.Before(found.CreatedAt)) {
			found = cloneBooking(b)
		}
	}
	return found
}

func (r *bookingRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.find(func(b entity.Booking) bool { return b.Id == id }), nil
}

func (r *bookingRepository) FindByCode(ctx context.Context, code string) (*entity.Booking, error) {
	return r.find(func(b entity.Booking) bool { return b.BookingCode == code }), nil
}

func (r *bookingRepository) FindByCodeForUpdate(ctx context.Context, code string) (*entity.Booking, error) {
	return r.FindByCode(ctx, code)
}

func (r *bookingRepository) FindByGatewaySubscriptionId(ctx context.Context, subscriptionId string) (*entity.Booking, error) {
	return r.find(func(b entity.Booking) bool {
		return b.GatewaySubscriptionId != nil && *b.GatewaySubscriptionId == subscriptionId
	}), nil
}

func (r *bookingRepository) list(match func(entity.Booking) bool, newestFirst bool) []*entity.Booking {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.Booking, 0)
	for _, b := range r.store.bookings {
		if match(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *bookingRepository) FindPendingCommission(ctx context.Context) ([]*entity.Booking, error) {
	return r.list(func(b entity.Booking) bool { return b.EligibleForCommission() }, false), nil
}

func (r *bookingRepository) FindAll(ctx context.Context, filter contract.BookingFilter) ([]*entity.Booking, error) {
	out := r.list(func(b entity.Booking) bool {
		if filter.Status != "" && string(b.Status) != filter.Status {
			return false
		}
		if filter.PaymentStatus != "" && string(b.PaymentStatus) != filter.PaymentStatus {
			return false
		}
		if !filter.From.IsZero() && b.ScheduledDate.Before(filter.From) {
			return false
		}
		if !filter.To.IsZero() && b.ScheduledDate.After(filter.To) {
			return false
		}
		return true
	}, true)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*entity.Booking{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *bookingRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	b, _ := r.FindByCode(ctx, code)
	return b != nil, nil
}

type referralUserRepository struct {
	store *Store
	tx    *unitOfWork
}

func (r *referralUserRepository) Create(ctx context.Context, user *entity.ReferralUser) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.referralUsers {
		if strings.EqualFold(u.ReferralCode, user.ReferralCode) || strings.EqualFold(u.Email, user.Email) {
			return contract.ErrDuplicate
		}
	}
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	track(r.tx, r.store.referralUsers, user.Id)
	r.store.referralUsers[user.Id] = *user
	return nil
}

func (r *referralUserRepository) find(match func(entity.ReferralUser) bool) *entity.ReferralUser {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.referralUsers {
		if match(u) {
			found := u
			return &found
		}
	}
	return nil
}

func (r *referralUserRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.ReferralUser, error) {
	return r.find(func(u entity.ReferralUser) bool { return u.Id == id }), nil
}

func (r *referralUserRepository) FindActiveByCode(ctx context.Context, code string) (*entity.ReferralUser, error) {
	code = strings.TrimSpace(code)
	return r.find(func(u entity.ReferralUser) bool {
		return u.IsActive && strings.EqualFold(u.ReferralCode, code)
	}), nil
}

func (r *referralUserRepository) FindByEmail(ctx context.Context, email string) (*entity.ReferralUser, error) {
	return r.find(func(u entity.ReferralUser) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *referralUserRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	return r.find(func(u entity.ReferralUser) bool { return strings.EqualFold(u.ReferralCode, code) }) != nil, nil
}

func (r *referralUserRepository) UpdateTotals(ctx context.Context, id uuid.UUID, totals entity.ReferrerTotals) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.referralUsers[id]
	if !ok {
		return nil
	}
	u.TotalEarned = totals.TotalEarned
	u.TotalReferrals = totals.TotalReferrals
	u.UpdatedAt = time.Now()
	track(r.tx, r.store.referralUsers, id)
	r.store.referralUsers[id] = u
	return nil
}

func (r *referralUserRepository) UpdateLevel(ctx context.Context, id uuid.UUID, levelId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.referralUsers[id]
	if !ok {
		return nil
	}
	u.CurrentLevelId = &levelId
	u.UpdatedAt = time.Now()
	track(r.tx, r.store.referralUsers, id)
	r.store.referralUsers[id] = u
	return nil
}

type referralLevelRepository struct {
	store *Store
	tx    *unitOfWork
}

func (r *referralLevelRepository) Create(ctx context.Context, level *entity.ReferralLevel) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, l := range r.store.levels {
		if l.MinEarnings.Equal(level.MinEarnings) {
			return contract.ErrDuplicate
		}
	}
	if level.Id == uuid.Nil {
		level.Id = uuid.New()
	}
	track(r.tx, r.store.levels, level.Id)
	r.store.levels[level.Id] = *level
	return nil
}

func (r *referralLevelRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.ReferralLevel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	l, ok := r.store.levels[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *referralLevelRepository) FindAllActive(ctx context.Context) ([]*entity.ReferralLevel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.ReferralLevel, 0, len(r.store.levels))
	for _, l := range r.store.levels {
		if l.IsActive {
			level := l
			out = append(out, &level)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinEarnings.LessThan(out[j].MinEarnings) })
	return out, nil
}

type referralRepository struct {
	store *Store
	tx    *unitOfWork
}

func (r *referralRepository) Create(ctx context.Context, referral *entity.Referral) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.referrals {
		if referral.PaymentType == entity.ReferralPaymentInitial &&
			existing.PaymentType == entity.ReferralPaymentInitial &&
			existing.BookingId == referral.BookingId {
			return contract.ErrDuplicate
		}
		if referral.InvoiceId != nil && existing.InvoiceId != nil && *existing.InvoiceId == *referral.InvoiceId {
			return contract.ErrDuplicate
		}
	}
	if referral.Id == uuid.Nil {
		referral.Id = uuid.New()
	}
	referral.CreatedAt = time.Now()
	track(r.tx, r.store.referrals, referral.Id)
	r.store.referrals[referral.Id] = *referral
	return nil
}

func (r *referralRepository) ExistsInitialForBooking(ctx context.Context, bookingId uuid.UUID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, existing := range r.store.referrals {
		if existing.BookingId == bookingId && existing.PaymentType == entity.ReferralPaymentInitial {
			return true, nil
		}
	}
	return false, nil
}

func (r *referralRepository) AggregateByReferrer(ctx context.Context, referrerId uuid.UUID) (*entity.ReferrerTotals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	totals := &entity.ReferrerTotals{TotalEarned: decimal.Zero}
	for _, existing := range r.store.referrals {
		if existing.ReferrerId == referrerId {
			totals.TotalEarned = totals.TotalEarned.Add(existing.CommissionEarned)
			totals.TotalReferrals++
		}
	}
	totals.TotalEarned = totals.TotalEarned.Round(2)
	return totals, nil
}

func (r *referralRepository) FindByReferrer(ctx context.Context, referrerId uuid.UUID, limit int) ([]*entity.Referral, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.Referral, 0)
	for _, existing := range r.store.referrals {
		if existing.ReferrerId == referrerId {
			ref := existing
			out = append(out, &ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type promoCodeRepository struct {
	store *Store
	tx    *unitOfWork
}

func (r *promoCodeRepository) Create(ctx context.Context, promo *entity.PromoCode) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.promoCodes {
		if p.Code == promo.Code {
			return contract.ErrDuplicate
		}
	}
	if promo.Id == uuid.Nil {
		promo.Id = uuid.New()
	}
	promo.CreatedAt = time.Now()
	track(r.tx, r.store.promoCodes, promo.Id)
	r.store.promoCodes[promo.Id] = *promo
	return nil
}

func (r *promoCodeRepository) FindActiveByCode(ctx context.Context, code string) (*entity.PromoCode, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, p := range r.store.promoCodes {
		if p.IsActive && p.Code == code {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

type webhookEventRepository struct {
	store *Store
	tx    *unitOfWork
}

func (r *webhookEventRepository) CreateIfAbsent(ctx context.Context, event *entity.WebhookEvent) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.webhookEvents[event.EventId]; ok {
		return false, nil
	}
	if event.Id == uuid.Nil {
		event.Id = uuid.New()
	}
	event.ReceivedAt = time.Now()
	track(r.tx, r.store.webhookEvents, event.EventId)
	r.store.webhookEvents[event.EventId] = *event
	return true, nil
}
