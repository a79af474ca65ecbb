// Copyright 2025 The axfor Authors
// Licensed under the Apache License, Version 2.0

//go:build cgo

package store

import (
	"github.com/linxGnu/grocksdb"
)

// RocksEngine is a grocksdb-backed Engine. It owns a single database
// handle opened against one directory; there is no column-family
// split, no Raft/WAL-replication coupling, and no lease or watch
// machinery — those belong to a different subsystem than the MVCC
// store this engine backs.
type RocksEngine struct {
	db *grocksdb.DB
	wo *grocksdb.WriteOptions
	ro *grocksdb.ReadOptions
}

// OpenRocksEngine opens (creating if absent) a RocksDB database at dir
// with the optimization settings this repository has settled on:
// async WAL (durability beyond the engine is explicitly out of scope),
// an LRU block cache, and LZ4 compression.
func OpenRocksEngine(dir string) (*RocksEngine, error) {
	opts := grocksdb.NewDefaultOptions()
	opts.SetCreateIfMissing(true)
	opts.SetMaxBackgroundJobs(4)
	opts.SetWriteBufferSize(64 * 1024 * 1024)
	opts.SetMaxWriteBufferNumber(3)
	opts.SetTargetFileSizeBase(64 * 1024 * 1024)
	opts.SetCompression(grocksdb.LZ4Compression)

	cache := grocksdb.NewLRUCache(128 * 1024 * 1024)
	bbto := grocksdb.NewDefaultBlockBasedTableOptions()
	bbto.SetBlockCache(cache)
	bbto.SetCacheIndexAndFilterBlocks(true)
	bbto.SetFilterPolicy(grocksdb.NewBloomFilter(10))
	opts.SetBlockBasedTableFactory(bbto)

	db, err := grocksdb.OpenDb(opts, dir)
	if err != nil {
		return nil, err
	}

	wo := grocksdb.NewDefaultWriteOptions()
	wo.SetSync(false)

	ro := grocksdb.NewDefaultReadOptions()
	ro.SetFillCache(true)
	ro.SetReadaheadSize(4 * 1024 * 1024)

	return &RocksEngine{db: db, wo: wo, ro: ro}, nil
}

func (e *RocksEngine) Get(key []byte) ([]byte, bool, error) {
	data, err := e.db.Get(e.ro, key)
	if err != nil {
		return nil, false, err
	}
	defer data.Free()

	if data.Size() == 0 {
		return nil, false, nil
	}
	value := make([]byte, data.Size())
	copy(value, data.Data())
	return value, true, nil
}

func (e *RocksEngine) NewIterator() Iterator {
	return &rocksIterator{it: e.db.NewIterator(e.ro)}
}

func (e *RocksEngine) NewWriteBatch() WriteBatch {
	return &rocksBatch{wb: grocksdb.NewWriteBatch()}
}

func (e *RocksEngine) Write(b WriteBatch) error {
	rb := b.(*rocksBatch)
	defer rb.wb.Destroy()
	return e.db.Write(e.wo, rb.wb)
}

func (e *RocksEngine) Close() error {
	e.wo.Destroy()
	e.ro.Destroy()
	e.db.Close()
	return nil
}

// ApproximateSize reports the engine's on-disk footprint across the
// whole keyspace, for operational diagnostics.
func (e *RocksEngine) ApproximateSize() (uint64, error) {
	ranges := []grocksdb.Range{{Start: []byte{0x00}, Limit: []byte{0xFF, 0xFF, 0xFF, 0xFF}}}
	sizes := e.db.GetApproximateSizes(ranges)
	var total uint64
	for _, s := range sizes {
		total += s
	}
	return total, nil
}

type rocksIterator struct {
	it *grocksdb.Iterator
}

func (i *rocksIterator) Seek(key []byte)  { i.it.Seek(key) }
func (i *rocksIterator) SeekToFirst()     { i.it.SeekToFirst() }
func (i *rocksIterator) SeekToLast()      { i.it.SeekToLast() }
func (i *rocksIterator) Valid() bool      { return i.it.Valid() }
func (i *rocksIterator) Key() []byte      { return i.it.Key().Data() }
func (i *rocksIterator) Value() []byte    { return i.it.Value().Data() }
func (i *rocksIterator) Next()            { i.it.Next() }
func (i *rocksIterator) Close()           { i.it.Close() }

type rocksBatch struct {
	wb *grocksdb.WriteBatch
}

func (b *rocksBatch) Put(key, value []byte)       { b.wb.Put(key, value) }
func (b *rocksBatch) Delete(key []byte)           { b.wb.Delete(key) }
func (b *rocksBatch) DeleteRange(start, end []byte) { b.wb.DeleteRange(start, end) }

// OpenRocksEngineAsEngine adapts OpenRocksEngine to the Engine-returning
// shape an mvcc.EngineOpener expects.
func OpenRocksEngineAsEngine(dir string) (Engine, error) {
	return OpenRocksEngine(dir)
}
