package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentStatus represents the status of a payment attempt.
// Only Success payments reduce the amount owed on a tab.
type PaymentStatus int

const (
	PaymentStatusPending PaymentStatus = 0
	PaymentStatusSuccess PaymentStatus = 1
	PaymentStatusFailed  PaymentStatus = 2
)

func (s PaymentStatus) String() string {
	return [...]string{"Pending", "Success", "Failed"}[s]
}

// IsTerminal reports whether the payment has been settled
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PaymentStatus(i)
		return nil
	}
	switch str {
	case "Pending":
		*s = PaymentStatusPending
	case "Success":
		*s = PaymentStatusSuccess
	case "Failed":
		*s = PaymentStatusFailed
	}
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PaymentStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PaymentStatus(v)
	case int:
		*s = PaymentStatus(v)
	}
	return nil
}
