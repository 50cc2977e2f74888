package enum

// PaymentMethod identifies how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "cash"
	PaymentMethodMobileMoney PaymentMethod = "mobile-money"
	PaymentMethodOther       PaymentMethod = "other"
)

// Valid reports whether the method is one of the known values
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMobileMoney, PaymentMethodOther:
		return true
	}
	return false
}
