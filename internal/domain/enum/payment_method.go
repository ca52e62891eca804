package enum

import (
	"fmt"
	"strings"
)

// PaymentMethod is a label recorded on the order. No payment is processed.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentCheck        PaymentMethod = "check"
	PaymentMobileWallet PaymentMethod = "mobile_wallet"
	PaymentInstallment  PaymentMethod = "installment"
)

const (
	MinInstallments = 2
	MaxInstallments = 4
)

func (p PaymentMethod) String() string {
	return string(p)
}

// BackOfficeValue is the label the back office prints on invoices. It only
// knows mobile wallet payments under the terminal's name.
func (p PaymentMethod) BackOfficeValue() string {
	if p == PaymentMobileWallet {
		return "sumup"
	}
	return string(p)
}

// IsValid reports whether p is a known payment method
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentCheck, PaymentMobileWallet, PaymentInstallment:
		return true
	}
	return false
}

// ParsePaymentMethod accepts the wire value in any case
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	p := PaymentMethod(strings.ToLower(strings.TrimSpace(value)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown payment method %q", value)
	}
	return p, nil
}
