// Package leveldb implements the storage interfaces on goleveldb.
package leveldb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/zeusync/climber/internal/core/storage/interfaces"
)

var _ interfaces.BatchedStorage = (*Store)(nil)

type Store struct {
	db *leveldb.DB

	reads, writes, deletes, batches atomic.Uint64
}

// Open opens or creates a database directory.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens a database that lives only in memory.
func OpenMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open in-memory leveldb: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.reads.Add(1)
	v, err := s.db.Get(key, nil)
	return v, translate(err)
}

func (s *Store) Put(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writes.Add(1)
	return translate(s.db.Put(key, value, nil))
}

func (s *Store) Delete(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.deletes.Add(1)
	return translate(s.db.Delete(key, nil))
}

func (s *Store) Write(ctx context.Context, batch interfaces.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := new(leveldb.Batch)
	batch.Each(b.Put, b.Delete)
	s.batches.Add(1)
	return translate(s.db.Write(b, nil))
}

func (s *Store) Iterate(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.reads.Add(1)
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return translate(iter.Error())
}

func (s *Store) Statistics() interfaces.StorageStatistics {
	return interfaces.StorageStatistics{
		Reads:   s.reads.Load(),
		Writes:  s.writes.Load(),
		Deletes: s.deletes.Load(),
		Batches: s.batches.Load(),
	}
}

func (s *Store) Close() error {
	return translate(s.db.Close())
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, leveldb.ErrNotFound):
		return interfaces.ErrNotFound
	case errors.Is(err, leveldb.ErrClosed):
		return interfaces.ErrClosed
	}
	return err
}
