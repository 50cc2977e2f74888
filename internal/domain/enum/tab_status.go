package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TabStatus represents the lifecycle status of a tab
type TabStatus int

const (
	TabStatusOpen    TabStatus = 0
	TabStatusOverdue TabStatus = 1
	TabStatusClosed  TabStatus = 2
)

func (s TabStatus) String() string {
	return [...]string{"Open", "Overdue", "Closed"}[s]
}

// IsTerminal reports whether the status accepts no further transitions
func (s TabStatus) IsTerminal() bool {
	return s == TabStatusClosed
}

func (s TabStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TabStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = TabStatus(i)
		return nil
	}
	switch str {
	case "Open":
		*s = TabStatusOpen
	case "Overdue":
		*s = TabStatusOverdue
	case "Closed":
		*s = TabStatusClosed
	}
	return nil
}

func (s TabStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *TabStatus) Scan(value interface{}) error {
	if value == nil {
		*s = TabStatusOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = TabStatus(v)
	case int:
		*s = TabStatus(v)
	}
	return nil
}
