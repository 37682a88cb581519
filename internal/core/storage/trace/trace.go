// Package trace persists climber snapshots per tick so runs can be replayed
// and compared.
//
// Keys:
//
//	snap/<name>/<tick, 8 bytes big endian>  JSON snapshot
//	digest/<tick, 8 bytes big endian>       combined digest of the tick
//	meta/last-tick                          latest recorded tick
package trace

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zeusync/climber/internal/core/climber"
	"github.com/zeusync/climber/internal/core/storage/interfaces"
	"github.com/zeusync/climber/internal/core/systems/recording"
	"github.com/zeusync/climber/pkg/encoding"
)

var _ recording.Sink = (*Store)(nil)

var ErrNotFound = interfaces.ErrNotFound

var (
	snapPrefix   = []byte("snap/")
	digestPrefix = []byte("digest/")
	lastTickKey  = []byte("meta/last-tick")
)

// Store writes one batch per recorded tick.
type Store struct {
	db    interfaces.BatchedStorage
	codec encoding.Codec[climber.Snapshot]
}

func New(db interfaces.BatchedStorage) *Store {
	return &Store{db: db, codec: encoding.JSON[climber.Snapshot]{}}
}

// Record stores the snapshots of one tick and its combined digest.
func (s *Store) Record(ctx context.Context, tick uint64, snaps []climber.Snapshot) error {
	var b interfaces.Batch
	for _, snap := range snaps {
		data, err := s.codec.Encode(snap)
		if err != nil {
			return fmt.Errorf("encode snapshot of %s: %w", snap.Name, err)
		}
		b.Put(snapKey(snap.Name, tick), data)
	}
	b.Put(digestKey(tick), u64(climber.CombinedDigest(snaps)))
	b.Put(lastTickKey, u64(tick))
	if err := s.db.Write(ctx, b); err != nil {
		return fmt.Errorf("write trace tick %d: %w", tick, err)
	}
	return nil
}

// Snapshots returns every recorded snapshot of the named climber in tick
// order.
func (s *Store) Snapshots(ctx context.Context, name string) ([]climber.Snapshot, error) {
	var out []climber.Snapshot
	err := s.db.Iterate(ctx, climberPrefix(name), func(_, value []byte) error {
		snap, err := s.codec.Decode(value)
		if err != nil {
			return err
		}
		out = append(out, snap)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read trace of %s: %w", name, err)
	}
	return out, nil
}

// At returns the snapshot of the named climber at tick.
func (s *Store) At(ctx context.Context, name string, tick uint64) (climber.Snapshot, error) {
	data, err := s.db.Get(ctx, snapKey(name, tick))
	if err != nil {
		return climber.Snapshot{}, err
	}
	return s.codec.Decode(data)
}

// Digest returns the combined digest recorded for tick.
func (s *Store) Digest(ctx context.Context, tick uint64) (uint64, error) {
	data, err := s.db.Get(ctx, digestKey(tick))
	if err != nil {
		return 0, err
	}
	return parseU64(data)
}

// LastTick returns the tick of the most recent Record call, or ErrNotFound
// for an empty trace.
func (s *Store) LastTick(ctx context.Context) (uint64, error) {
	data, err := s.db.Get(ctx, lastTickKey)
	if err != nil {
		return 0, err
	}
	return parseU64(data)
}

// Names lists the climbers present in the trace in key order.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.Iterate(ctx, snapPrefix, func(key, _ []byte) error {
		rest := key[len(snapPrefix):]
		name := string(rest[:len(rest)-9])
		if len(names) == 0 || names[len(names)-1] != name {
			names = append(names, name)
		}
		return nil
	})
	return names, err
}

func climberPrefix(name string) []byte {
	k := make([]byte, 0, len(snapPrefix)+len(name)+1)
	k = append(k, snapPrefix...)
	k = append(k, name...)
	return append(k, '/')
}

func snapKey(name string, tick uint64) []byte {
	return binary.BigEndian.AppendUint64(climberPrefix(name), tick)
}

func digestKey(tick uint64) []byte {
	return binary.BigEndian.AppendUint64(bytes.Clone(digestPrefix), tick)
}

func u64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func parseU64(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, errors.New("trace: malformed counter")
	}
	return binary.BigEndian.Uint64(data), nil
}
