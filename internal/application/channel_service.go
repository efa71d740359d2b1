package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alorle/iptv-console/internal/channel"
	"github.com/alorle/iptv-console/internal/port/driven"
)

// ChannelService orchestrates channel management against the backend with
// client-side validation.
type ChannelService struct {
	api    driven.ChannelAPI
	logger *slog.Logger
}

// NewChannelService creates a new ChannelService.
func NewChannelService(api driven.ChannelAPI, logger *slog.Logger) *ChannelService {
	return &ChannelService{
		api:    api,
		logger: logger,
	}
}

// List returns channels matching the filter.
func (s *ChannelService) List(ctx context.Context, filter channel.Filter) ([]channel.Channel, error) {
	channels, err := s.api.ListChannels(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channels: %w", err)
	}

	s.logger.Debug("fetched channels", "count", len(channels), "group", filter.Group, "search", filter.Search)

	return channels, nil
}

// Get returns a single channel.
func (s *ChannelService) Get(ctx context.Context, id string) (channel.Channel, error) {
	if strings.TrimSpace(id) == "" {
		return channel.Channel{}, channel.ErrChannelNotFound
	}
	return s.api.GetChannel(ctx, id)
}

// Rename changes a channel's display name.
func (s *ChannelService) Rename(ctx context.Context, id, name string) (channel.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return channel.Channel{}, channel.ErrEmptyName
	}

	return s.api.UpdateChannel(ctx, id, channel.Update{Name: &name})
}

// SetGroup moves a channel into a group. An empty group ungroups it.
func (s *ChannelService) SetGroup(ctx context.Context, id, group string) (channel.Channel, error) {
	group = strings.TrimSpace(group)
	return s.api.UpdateChannel(ctx, id, channel.Update{Group: &group})
}

// Update applies an arbitrary field update.
func (s *ChannelService) Update(ctx context.Context, id string, update channel.Update) (channel.Channel, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return channel.Channel{}, channel.ErrEmptyName
	}
	return s.api.UpdateChannel(ctx, id, update)
}

// Delete removes a channel.
func (s *ChannelService) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteChannel(ctx, id); err != nil {
		return err
	}

	s.logger.Info("channel deleted", "channel_id", id)

	return nil
}
