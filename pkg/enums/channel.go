package enums

import "fmt"

// Channel identifies one delivery medium for a notification.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelBrowser  Channel = "browser"
	// ChannelSMS is reserved; no sender implementation exists yet.
	ChannelSMS Channel = "sms"
)

var validChannels = []Channel{
	ChannelEmail,
	ChannelWhatsApp,
	ChannelBrowser,
	ChannelSMS,
}

// IsValid checks whether the given channel matches the canonical enum.
func (c Channel) IsValid() bool {
	for _, candidate := range validChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChannel converts raw strings into Channel.
func ParseChannel(value string) (Channel, error) {
	for _, candidate := range validChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid channel %q", value)
}
