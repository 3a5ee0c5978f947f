package models

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role controls access to the admin back-office
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is an account identified by a verified Iranian mobile number
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Phone     string         `gorm:"uniqueIndex;size:16;not null" json:"phone"`
	Name      string         `json:"name"`
	Role      Role           `gorm:"size:16;not null;default:customer" json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

var iranMobile = regexp.MustCompile(`^09\d{9}$`)

// NormalizePhone canonicalizes an Iranian mobile number to the 09xxxxxxxxx
// form, accepting +98 / 0098 / 98 prefixes. Returns "" when the input is not
// a valid mobile number.
func NormalizePhone(raw string) string {
	phone := strings.TrimSpace(raw)
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")

	switch {
	case strings.HasPrefix(phone, "+98"):
		phone = "0" + phone[3:]
	case strings.HasPrefix(phone, "0098"):
		phone = "0" + phone[4:]
	case strings.HasPrefix(phone, "98") && len(phone) == 12:
		phone = "0" + phone[2:]
	}

	if !iranMobile.MatchString(phone) {
		return ""
	}
	return phone
}
