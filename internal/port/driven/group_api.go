package driven

import (
	"context"

	"github.com/alorle/iptv-console/internal/channel"
)

// GroupAPI defines the interface for the backend group endpoints.
type GroupAPI interface {
	// ListGroups returns all channel groups.
	ListGroups(ctx context.Context) ([]channel.Group, error)

	// RenameGroup changes a group's display name.
	RenameGroup(ctx context.Context, id, name string) (channel.Group, error)

	// MergeGroups moves every channel of sourceID into targetID and
	// deletes the source group. It returns the grown target group.
	MergeGroups(ctx context.Context, sourceID, targetID string) (channel.Group, error)

	// DeleteGroup removes a group; its channels become ungrouped.
	DeleteGroup(ctx context.Context, id string) error

	// AssignChannels moves the given channels into the group.
	AssignChannels(ctx context.Context, groupID string, channelIDs []string) error
}
