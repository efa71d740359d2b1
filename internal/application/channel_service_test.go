package application

import (
	"context"
	"errors"
	"testing"

	"github.com/alorle/iptv-console/internal/channel"
)

// fakeChannelAPI records the last update it received.
type fakeChannelAPI struct {
	channels   []channel.Channel
	lastID     string
	lastUpdate channel.Update
	deleted    []string
	err        error
}

func (f *fakeChannelAPI) ListChannels(ctx context.Context, filter channel.Filter) ([]channel.Channel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.channels, nil
}

func (f *fakeChannelAPI) GetChannel(ctx context.Context, id string) (channel.Channel, error) {
	if f.err != nil {
		return channel.Channel{}, f.err
	}
	for _, c := range f.channels {
		if c.ID == id {
			return c, nil
		}
	}
	return channel.Channel{}, channel.ErrChannelNotFound
}

func (f *fakeChannelAPI) UpdateChannel(ctx context.Context, id string, update channel.Update) (channel.Channel, error) {
	if f.err != nil {
		return channel.Channel{}, f.err
	}
	f.lastID = id
	f.lastUpdate = update
	return channel.Channel{ID: id}, nil
}

func (f *fakeChannelAPI) DeleteChannel(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func TestChannelServiceRename(t *testing.T) {
	api := &fakeChannelAPI{}
	service := NewChannelService(api, discardLogger())

	if _, err := service.Rename(context.Background(), "ch-1", "  La 1 HD  "); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if api.lastUpdate.Name == nil || *api.lastUpdate.Name != "La 1 HD" {
		t.Errorf("Rename() sent name %v, want trimmed La 1 HD", api.lastUpdate.Name)
	}

	if _, err := service.Rename(context.Background(), "ch-1", "   "); !errors.Is(err, channel.ErrEmptyName) {
		t.Errorf("Rename() with blank name error = %v, want ErrEmptyName", err)
	}
}

func TestChannelServiceSetGroup(t *testing.T) {
	api := &fakeChannelAPI{}
	service := NewChannelService(api, discardLogger())

	if _, err := service.SetGroup(context.Background(), "ch-1", "Sports"); err != nil {
		t.Fatalf("SetGroup() error = %v", err)
	}
	if api.lastUpdate.Group == nil || *api.lastUpdate.Group != "Sports" {
		t.Errorf("SetGroup() sent group %v, want Sports", api.lastUpdate.Group)
	}

	// Empty group is a valid request: it ungroups the channel.
	if _, err := service.SetGroup(context.Background(), "ch-1", ""); err != nil {
		t.Errorf("SetGroup() with empty group error = %v", err)
	}
	if api.lastUpdate.Group == nil || *api.lastUpdate.Group != "" {
		t.Errorf("SetGroup() sent group %v, want empty string", api.lastUpdate.Group)
	}
}

func TestChannelServiceUpdateRejectsBlankName(t *testing.T) {
	api := &fakeChannelAPI{}
	service := NewChannelService(api, discardLogger())

	blank := " "
	if _, err := service.Update(context.Background(), "ch-1", channel.Update{Name: &blank}); !errors.Is(err, channel.ErrEmptyName) {
		t.Errorf("Update() error = %v, want ErrEmptyName", err)
	}
	if api.lastID != "" {
		t.Error("blank-name update reached the backend")
	}
}

func TestChannelServiceGetEmptyID(t *testing.T) {
	service := NewChannelService(&fakeChannelAPI{}, discardLogger())

	if _, err := service.Get(context.Background(), "  "); !errors.Is(err, channel.ErrChannelNotFound) {
		t.Errorf("Get() with blank id error = %v, want ErrChannelNotFound", err)
	}
}

func TestGroupServiceMerge(t *testing.T) {
	api := &fakeGroupAPI{}
	service := NewGroupService(api, discardLogger())

	if _, err := service.Merge(context.Background(), "g-1", "g-1"); !errors.Is(err, channel.ErrSelfMerge) {
		t.Errorf("Merge() into itself error = %v, want ErrSelfMerge", err)
	}
	if api.mergeCalls != 0 {
		t.Error("self-merge reached the backend")
	}

	if _, err := service.Merge(context.Background(), "g-1", "g-2"); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if api.mergeCalls != 1 {
		t.Errorf("merge calls = %d, want 1", api.mergeCalls)
	}
}

func TestGroupServiceRename(t *testing.T) {
	api := &fakeGroupAPI{}
	service := NewGroupService(api, discardLogger())

	if _, err := service.Rename(context.Background(), "g-1", "  "); !errors.Is(err, channel.ErrEmptyGroupName) {
		t.Errorf("Rename() with blank name error = %v, want ErrEmptyGroupName", err)
	}

	if _, err := service.Rename(context.Background(), "g-1", " Cine "); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if api.lastName != "Cine" {
		t.Errorf("Rename() sent name %q, want trimmed Cine", api.lastName)
	}
}

func TestGroupServiceAssignEmptySelection(t *testing.T) {
	api := &fakeGroupAPI{}
	service := NewGroupService(api, discardLogger())

	if err := service.Assign(context.Background(), "g-1", nil); err != nil {
		t.Fatalf("Assign() with empty selection error = %v", err)
	}
	if api.assignCalls != 0 {
		t.Error("empty assignment reached the backend")
	}
}

type fakeGroupAPI struct {
	groups      []channel.Group
	lastName    string
	mergeCalls  int
	assignCalls int
}

func (f *fakeGroupAPI) ListGroups(ctx context.Context) ([]channel.Group, error) {
	return f.groups, nil
}

func (f *fakeGroupAPI) RenameGroup(ctx context.Context, id, name string) (channel.Group, error) {
	f.lastName = name
	return channel.Group{ID: id, Name: name}, nil
}

func (f *fakeGroupAPI) MergeGroups(ctx context.Context, sourceID, targetID string) (channel.Group, error) {
	f.mergeCalls++
	return channel.Group{ID: targetID}, nil
}

func (f *fakeGroupAPI) DeleteGroup(ctx context.Context, id string) error {
	return nil
}

func (f *fakeGroupAPI) AssignChannels(ctx context.Context, groupID string, channelIDs []string) error {
	f.assignCalls++
	return nil
}
