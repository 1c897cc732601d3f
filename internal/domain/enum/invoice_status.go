package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// InvoiceStatus tracks whether an invoice is still being edited.
type InvoiceStatus int

const (
	InvoiceStatusDraft     InvoiceStatus = 0
	InvoiceStatusFinalized InvoiceStatus = 1
)

func (s InvoiceStatus) String() string {
	names := [...]string{"Draft", "Finalized"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Draft"
	}
	return names[s]
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = InvoiceStatus(i)
		return nil
	}
	switch str {
	case "Draft":
		*s = InvoiceStatusDraft
	case "Finalized":
		*s = InvoiceStatusFinalized
	}
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusDraft
		return nil
	}
	n, err := scanInt("InvoiceStatus", value)
	if err != nil {
		return err
	}
	*s = InvoiceStatus(n)
	return nil
}
