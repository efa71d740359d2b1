package scan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alorle/iptv-console/internal/channel"
)

// Mode selects how the backend builds the set of candidate stream URLs.
type Mode string

// Scan modes supported by the backend.
const (
	// ModeTemplate expands a base URL template containing an {ip}
	// placeholder over an IPv4 range.
	ModeTemplate Mode = "template"
	// ModeMulticast probes an explicit list of multicast addresses.
	ModeMulticast Mode = "multicast"
	// ModeM3UBatch re-validates every stream of an imported playlist.
	ModeM3UBatch Mode = "m3u_batch"
)

// IPPlaceholder is the token the backend substitutes for each candidate
// address when expanding a template scan.
const IPPlaceholder = "{ip}"

// Request describes a scan to submit to the backend. It is immutable once
// submitted; the poller never mutates it after Start.
type Request struct {
	Mode       Mode     `json:"mode"`
	BaseURL    string   `json:"base_url,omitempty"`
	StartIP    string   `json:"start_ip,omitempty"`
	EndIP      string   `json:"end_ip,omitempty"`
	Protocol   string   `json:"protocol,omitempty"`
	Ports      []int    `json:"ports,omitempty"`
	TimeoutMS  int64    `json:"timeout_ms,omitempty"`
	Preset     string   `json:"preset,omitempty"`
	Addresses  []string `json:"addresses,omitempty"`
	PlaylistID string   `json:"playlist_id,omitempty"`
}

// Validation errors for scan requests.
var (
	ErrUnknownMode      = errors.New("unknown scan mode")
	ErrMissingTemplate  = errors.New("base URL must contain the {ip} placeholder")
	ErrInvalidIPRange   = errors.New("invalid IP range")
	ErrEmptyAddressList = errors.New("multicast scan requires at least one address")
	ErrMissingPlaylist  = errors.New("m3u_batch scan requires a playlist id")
)

// Validate checks the mode-specific requirements of the request. The backend
// validates again on submission; this catches malformed requests before any
// network traffic.
func (r Request) Validate() error {
	switch r.Mode {
	case ModeTemplate:
		if !strings.Contains(r.BaseURL, IPPlaceholder) {
			return ErrMissingTemplate
		}
		if _, err := RangeSize(r.StartIP, r.EndIP); err != nil {
			return err
		}
	case ModeMulticast:
		if len(r.Addresses) == 0 {
			return ErrEmptyAddressList
		}
		for _, addr := range r.Addresses {
			if strings.TrimSpace(addr) == "" {
				return ErrEmptyAddressList
			}
		}
	case ModeM3UBatch:
		if strings.TrimSpace(r.PlaylistID) == "" {
			return ErrMissingPlaylist
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, r.Mode)
	}

	for _, p := range r.Ports {
		if p < 1 || p > 65535 {
			return fmt.Errorf("port %d out of range", p)
		}
	}

	return nil
}

// Handle identifies a submitted scan. The ScanID is the sole key for
// subsequent polls and cancellation.
type Handle struct {
	ScanID string `json:"scan_id"`
	Status Status `json:"status"`
	Total  int    `json:"total"`
}

// Snapshot is the latest known state of a scan as returned by a status poll.
type Snapshot struct {
	ScanID      string            `json:"scan_id"`
	Status      Status            `json:"status"`
	Progress    int               `json:"progress"`
	Total       int               `json:"total"`
	Valid       int               `json:"valid"`
	Invalid     int               `json:"invalid"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Error       string            `json:"error,omitempty"`
	Channels    []channel.Channel `json:"channels,omitempty"`
}

// Snapshot invariant violations.
var (
	ErrNegativeCounter  = errors.New("snapshot counters cannot be negative")
	ErrProgressOverflow = errors.New("snapshot progress exceeds total")
	ErrCounterOverflow  = errors.New("snapshot valid+invalid exceeds progress")
)

// Validate enforces the counter ordering valid+invalid <= progress <= total.
func (s Snapshot) Validate() error {
	if s.Progress < 0 || s.Total < 0 || s.Valid < 0 || s.Invalid < 0 {
		return ErrNegativeCounter
	}
	if s.Progress > s.Total {
		return ErrProgressOverflow
	}
	if s.Valid+s.Invalid > s.Progress {
		return ErrCounterOverflow
	}
	return nil
}

// Percent returns the completion percentage in [0, 100]. An empty scan
// (total 0) reports 0 rather than dividing by zero.
func (s Snapshot) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Progress) / float64(s.Total) * 100
}
