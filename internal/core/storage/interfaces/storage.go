package interfaces

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("storage: key not found")
	ErrClosed   = errors.New("storage: closed")
)

// Storage is an ordered byte key-value store.
type Storage interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Put(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Iterate calls fn for every key with the given prefix in key order. The
	// slices are only valid during the call. Iteration stops at the first
	// error, which is returned.
	Iterate(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error

	Statistics() StorageStatistics
	Close() error
}

// BatchedStorage applies several writes atomically.
type BatchedStorage interface {
	Storage

	Write(ctx context.Context, batch Batch) error
}

// Batch collects writes for BatchedStorage.Write.
type Batch struct {
	puts    []kv
	deletes [][]byte
}

type kv struct{ key, value []byte }

func (b *Batch) Put(key, value []byte) { b.puts = append(b.puts, kv{key, value}) }
func (b *Batch) Delete(key []byte)     { b.deletes = append(b.deletes, key) }
func (b *Batch) Len() int              { return len(b.puts) + len(b.deletes) }

// Each replays the batch: every put in order, then every delete.
func (b *Batch) Each(put func(key, value []byte), del func(key []byte)) {
	for _, p := range b.puts {
		put(p.key, p.value)
	}
	for _, d := range b.deletes {
		del(d)
	}
}

// StorageStatistics counts operations since the store was opened.
type StorageStatistics struct {
	Reads   uint64
	Writes  uint64
	Deletes uint64
	Batches uint64
}
