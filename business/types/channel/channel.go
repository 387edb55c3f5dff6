// Package channel represents the outbound message channel type in the system.
package channel

import "fmt"

// The set of channels that can be used.
var (
	Email    = newChannel("EMAIL")
	SMS      = newChannel("SMS")
	WhatsApp = newChannel("WHATSAPP")
)

// =============================================================================

// Set of known channels.
var channels = make(map[string]Channel)

// Channel represents an outbound message channel in the system.
type Channel struct {
	value string
}

func newChannel(channel string) Channel {
	c := Channel{channel}
	channels[channel] = c
	return c
}

// String returns the name of the channel.
func (c Channel) String() string {
	return c.value
}

// Equal provides support for the go-cmp package and testing.
func (c Channel) Equal(c2 Channel) bool {
	return c.value == c2.value
}

// MarshalText provides support for logging and any marshal needs.
func (c Channel) MarshalText() ([]byte, error) {
	return []byte(c.value), nil
}

// =============================================================================

// Parse parses the string value and returns a channel if one exists.
func Parse(value string) (Channel, error) {
	channel, exists := channels[value]
	if !exists {
		return Channel{}, fmt.Errorf("invalid channel %q", value)
	}

	return channel, nil
}

// MustParse parses the string value and returns a channel if one exists. If
// an error occurs the function panics.
func MustParse(value string) Channel {
	channel, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return channel
}
