package specification

import (
	"strings"

	"gorm.io/gorm"
)

// ByCodeInsensitive matches a code column ignoring case
type ByCodeInsensitive struct {
	Column string
	Code   string
}

func (s ByCodeInsensitive) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("UPPER("+s.Column+") = ?", strings.ToUpper(strings.TrimSpace(s.Code)))
}

// ActiveOnly filters rows flagged is_active
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// InitialPayment filters referral rows created by the initial commission path
type InitialPayment struct{}

func (s InitialPayment) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("payment_type = ?", "initial")
}
