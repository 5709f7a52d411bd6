package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/brightpath-crm/notify-backend/pkg/enums"
)

// ChannelList stores the ordered set of requested delivery channels as a
// jsonb array.
type ChannelList []enums.Channel

func (c *ChannelList) Scan(src any) error {
	if src == nil {
		*c = ChannelList{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return c.parseFromBytes([]byte(v))
	case []byte:
		return c.parseFromBytes(v)
	default:
		return fmt.Errorf("ChannelList: unsupported Scan type %T", src)
	}
}

func (c ChannelList) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("ChannelList: marshal: %w", err)
	}
	return string(raw), nil
}

// Contains reports whether the channel is part of the delivery plan.
func (c ChannelList) Contains(channel enums.Channel) bool {
	for _, candidate := range c {
		if candidate == channel {
			return true
		}
	}
	return false
}

func (c *ChannelList) parseFromBytes(raw []byte) error {
	if len(raw) == 0 {
		*c = ChannelList{}
		return nil
	}
	var out []enums.Channel
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("ChannelList: unmarshal: %w", err)
	}
	*c = out
	return nil
}
