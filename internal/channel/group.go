package channel

import "errors"

// Group errors
var (
	ErrEmptyGroupName = errors.New("group name cannot be empty")
	ErrGroupNotFound  = errors.New("group not found")
	ErrSelfMerge      = errors.New("cannot merge a group into itself")
)

// Group is a named collection of channels.
type Group struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ChannelCount int    `json:"channel_count"`
}
