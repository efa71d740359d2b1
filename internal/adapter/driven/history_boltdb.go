package driven

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-console/internal/channel"
	"github.com/alorle/iptv-console/internal/scan"
)

const (
	historyBucket     = "history"
	historyByIDBucket = "history_by_id"
)

// ErrScanNotRecorded is returned when no snapshot has been stored for a
// scan id.
var ErrScanNotRecorded = errors.New("scan not recorded in history")

// HistoryBoltDBRepository implements the HistoryRepository port using
// BoltDB. Snapshots live under history/<startTimestamp+scanID>; a second
// bucket maps scan_id to that primary key for direct lookups.
type HistoryBoltDBRepository struct {
	db *bbolt.DB
}

// NewHistoryBoltDBRepository creates a new BoltDB-backed history repository.
// It initializes the required buckets if they don't exist.
func NewHistoryBoltDBRepository(db *bbolt.DB) (*HistoryBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(historyBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(historyByIDBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &HistoryBoltDBRepository{db: db}, nil
}

// snapshotDTO is the JSON serialization format for a recorded snapshot.
type snapshotDTO struct {
	ScanID      string            `json:"scan_id"`
	Status      string            `json:"status"`
	Progress    int               `json:"progress"`
	Total       int               `json:"total"`
	Valid       int               `json:"valid"`
	Invalid     int               `json:"invalid"`
	StartedAt   int64             `json:"started_at"`
	CompletedAt int64             `json:"completed_at,omitempty"`
	Error       string            `json:"error,omitempty"`
	Channels    []channel.Channel `json:"channels,omitempty"`
}

// Save persists a terminal snapshot. Saving the same scan id twice
// overwrites the previous record.
func (r *HistoryBoltDBRepository) Save(ctx context.Context, snap scan.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.ScanID == "" {
		return errors.New("snapshot has no scan id")
	}
	if !snap.Status.Terminal() {
		return errors.New("only terminal snapshots are recorded")
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		top := tx.Bucket([]byte(historyBucket))
		byID := tx.Bucket([]byte(historyByIDBucket))
		if top == nil || byID == nil {
			return errors.New("history buckets not found")
		}

		// Drop any previous record for this scan id.
		if oldKey := byID.Get([]byte(snap.ScanID)); oldKey != nil {
			if err := top.Delete(oldKey); err != nil {
				return err
			}
		}

		dto := snapshotToDTO(snap)
		data, err := json.Marshal(dto)
		if err != nil {
			return err
		}

		key := historyKey(snap.StartedAt, snap.ScanID)
		if err := top.Put(key, data); err != nil {
			return err
		}
		return byID.Put([]byte(snap.ScanID), key)
	})
}

// FindAll returns recorded snapshots ordered by start time descending
// (most recent first).
func (r *HistoryBoltDBRepository) FindAll(ctx context.Context) ([]scan.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snapshots []scan.Snapshot

	err := r.db.View(func(tx *bbolt.Tx) error {
		top := tx.Bucket([]byte(historyBucket))
		if top == nil {
			return errors.New("history bucket not found")
		}

		// Keys start with a big-endian timestamp, so reverse cursor
		// order is most-recent-first.
		c := top.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			snap, err := dtoToSnapshot(v)
			if err != nil {
				return err
			}
			snapshots = append(snapshots, snap)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	if snapshots == nil {
		snapshots = []scan.Snapshot{}
	}

	return snapshots, nil
}

// FindByScanID returns the recorded snapshot for a scan, or
// ErrScanNotRecorded when none exists.
func (r *HistoryBoltDBRepository) FindByScanID(ctx context.Context, scanID string) (scan.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return scan.Snapshot{}, err
	}

	var snap scan.Snapshot

	err := r.db.View(func(tx *bbolt.Tx) error {
		top := tx.Bucket([]byte(historyBucket))
		byID := tx.Bucket([]byte(historyByIDBucket))
		if top == nil || byID == nil {
			return errors.New("history buckets not found")
		}

		key := byID.Get([]byte(scanID))
		if key == nil {
			return ErrScanNotRecorded
		}

		data := top.Get(key)
		if data == nil {
			return ErrScanNotRecorded
		}

		var err error
		snap, err = dtoToSnapshot(data)
		return err
	})

	if err != nil {
		return scan.Snapshot{}, err
	}

	return snap, nil
}

// DeleteBefore removes snapshots of scans started before the given time.
func (r *HistoryBoltDBRepository) DeleteBefore(ctx context.Context, before time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		top := tx.Bucket([]byte(historyBucket))
		byID := tx.Bucket([]byte(historyByIDBucket))
		if top == nil || byID == nil {
			return errors.New("history buckets not found")
		}

		cutoff := timestampPrefix(before)

		c := top.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if bytes.Compare(k[:8], cutoff) >= 0 {
				break
			}

			snap, err := dtoToSnapshot(v)
			if err != nil {
				return err
			}

			if err := c.Delete(); err != nil {
				return err
			}
			if err := byID.Delete([]byte(snap.ScanID)); err != nil {
				return err
			}
		}

		return nil
	})
}

// historyKey builds a primary key ordered by start time: an 8-byte
// big-endian nanosecond timestamp followed by the scan id as tie-breaker.
func historyKey(startedAt time.Time, scanID string) []byte {
	key := make([]byte, 8, 8+len(scanID))
	binary.BigEndian.PutUint64(key, uint64(startedAt.UnixNano()))
	return append(key, scanID...)
}

func timestampPrefix(t time.Time) []byte {
	prefix := make([]byte, 8)
	binary.BigEndian.PutUint64(prefix, uint64(t.UnixNano()))
	return prefix
}

func snapshotToDTO(snap scan.Snapshot) snapshotDTO {
	dto := snapshotDTO{
		ScanID:    snap.ScanID,
		Status:    string(snap.Status),
		Progress:  snap.Progress,
		Total:     snap.Total,
		Valid:     snap.Valid,
		Invalid:   snap.Invalid,
		StartedAt: snap.StartedAt.UnixNano(),
		Error:     snap.Error,
		Channels:  snap.Channels,
	}
	if snap.CompletedAt != nil {
		dto.CompletedAt = snap.CompletedAt.UnixNano()
	}
	return dto
}

func dtoToSnapshot(data []byte) (scan.Snapshot, error) {
	var dto snapshotDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return scan.Snapshot{}, err
	}

	snap := scan.Snapshot{
		ScanID:    dto.ScanID,
		Status:    scan.Status(dto.Status),
		Progress:  dto.Progress,
		Total:     dto.Total,
		Valid:     dto.Valid,
		Invalid:   dto.Invalid,
		StartedAt: time.Unix(0, dto.StartedAt),
		Error:     dto.Error,
		Channels:  dto.Channels,
	}
	if dto.CompletedAt != 0 {
		completedAt := time.Unix(0, dto.CompletedAt)
		snap.CompletedAt = &completedAt
	}
	return snap, nil
}
