package channel

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyName       = errors.New("channel name cannot be empty")
	ErrEmptyURL        = errors.New("channel URL cannot be empty")
	ErrChannelNotFound = errors.New("channel not found")
)

// Channel represents a discovered IPTV channel as the backend stores it.
// The same shape appears in scan results and in the channel management API.
type Channel struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Group    string `json:"group,omitempty"`
	TvgID    string `json:"tvg_id,omitempty"`
	LogoURL  string `json:"logo_url,omitempty"`
	Bitrate  int64  `json:"bitrate,omitempty"`
	Codec    string `json:"codec,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

// Validate checks the minimal requirements for a channel record.
func (c Channel) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.URL) == "" {
		return ErrEmptyURL
	}
	return nil
}

// Update carries the editable fields of a channel. Nil fields are left
// untouched by the backend.
type Update struct {
	Name    *string `json:"name,omitempty"`
	Group   *string `json:"group,omitempty"`
	TvgID   *string `json:"tvg_id,omitempty"`
	LogoURL *string `json:"logo_url,omitempty"`
}

// Filter narrows channel listings.
type Filter struct {
	Group  string
	Search string
}
