package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alorle/iptv-console/internal/channel"
	"github.com/alorle/iptv-console/internal/port/driven"
)

// GroupService orchestrates group management against the backend with
// client-side sanity checks.
type GroupService struct {
	api    driven.GroupAPI
	logger *slog.Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(api driven.GroupAPI, logger *slog.Logger) *GroupService {
	return &GroupService{
		api:    api,
		logger: logger,
	}
}

// List returns all groups.
func (s *GroupService) List(ctx context.Context) ([]channel.Group, error) {
	groups, err := s.api.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups: %w", err)
	}

	s.logger.Debug("fetched groups", "count", len(groups))

	return groups, nil
}

// Rename changes a group's display name.
func (s *GroupService) Rename(ctx context.Context, id, name string) (channel.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return channel.Group{}, channel.ErrEmptyGroupName
	}

	return s.api.RenameGroup(ctx, id, name)
}

// Merge moves every channel of sourceID into targetID and deletes the
// source group.
func (s *GroupService) Merge(ctx context.Context, sourceID, targetID string) (channel.Group, error) {
	if sourceID == targetID {
		return channel.Group{}, channel.ErrSelfMerge
	}

	group, err := s.api.MergeGroups(ctx, sourceID, targetID)
	if err != nil {
		return channel.Group{}, err
	}

	s.logger.Info("groups merged", "source_id", sourceID, "target_id", targetID, "channel_count", group.ChannelCount)

	return group, nil
}

// Delete removes a group; its channels become ungrouped.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	return s.api.DeleteGroup(ctx, id)
}

// Assign moves the given channels into a group.
func (s *GroupService) Assign(ctx context.Context, groupID string, channelIDs []string) error {
	if len(channelIDs) == 0 {
		return nil
	}

	return s.api.AssignChannels(ctx, groupID, channelIDs)
}
