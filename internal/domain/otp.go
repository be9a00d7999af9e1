package domain

import "time"

// OTPTTL — срок жизни одноразового кода.
const OTPTTL = 5 * time.Minute

// OTPCode — одноразовый код подтверждения, привязанный к номеру телефона.
type OTPCode struct {
	Mobile    string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired сообщает, истёк ли срок жизни кода к заданному моменту.
func (c OTPCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
