package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// HoursMode selects how a venue's business hours are configured.
// Exactly one mode is active at a time; AlwaysOpen overrides any windowed
// configuration.
type HoursMode int

const (
	HoursModeAlwaysOpen HoursMode = 0
	HoursModeSimple     HoursMode = 1
	HoursModeAdvanced   HoursMode = 2
)

func (m HoursMode) String() string {
	return [...]string{"AlwaysOpen", "Simple", "Advanced"}[m]
}

func (m HoursMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *HoursMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = HoursMode(i)
		return nil
	}
	switch str {
	case "AlwaysOpen":
		*m = HoursModeAlwaysOpen
	case "Simple":
		*m = HoursModeSimple
	case "Advanced":
		*m = HoursModeAdvanced
	}
	return nil
}

func (m HoursMode) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *HoursMode) Scan(value interface{}) error {
	if value == nil {
		*m = HoursModeAlwaysOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = HoursMode(v)
	case int:
		*m = HoursMode(v)
	}
	return nil
}
