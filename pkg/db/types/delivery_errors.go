package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DeliveryError is one failed delivery attempt recorded on a notification.
type DeliveryError struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DeliveryErrors is the append-only jsonb error log on a notification record.
type DeliveryErrors []DeliveryError

func (e *DeliveryErrors) Scan(src any) error {
	if src == nil {
		*e = DeliveryErrors{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return e.parseFromBytes([]byte(v))
	case []byte:
		return e.parseFromBytes(v)
	default:
		return fmt.Errorf("DeliveryErrors: unsupported Scan type %T", src)
	}
}

func (e DeliveryErrors) Value() (driver.Value, error) {
	if len(e) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("DeliveryErrors: marshal: %w", err)
	}
	return string(raw), nil
}

func (e *DeliveryErrors) parseFromBytes(raw []byte) error {
	if len(raw) == 0 {
		*e = DeliveryErrors{}
		return nil
	}
	var out []DeliveryError
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("DeliveryErrors: unmarshal: %w", err)
	}
	*e = out
	return nil
}
