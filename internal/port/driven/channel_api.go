package driven

import (
	"context"

	"github.com/alorle/iptv-console/internal/channel"
)

// ChannelAPI defines the interface for the backend channel endpoints.
type ChannelAPI interface {
	// ListChannels returns channels matching the filter, all when the
	// filter is zero.
	ListChannels(ctx context.Context, filter channel.Filter) ([]channel.Channel, error)

	// GetChannel returns a single channel by id.
	GetChannel(ctx context.Context, id string) (channel.Channel, error)

	// UpdateChannel applies the non-nil fields of the update and returns
	// the updated record.
	UpdateChannel(ctx context.Context, id string, update channel.Update) (channel.Channel, error)

	// DeleteChannel removes a channel.
	DeleteChannel(ctx context.Context, id string) error
}
