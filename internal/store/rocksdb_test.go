// Copyright 2025 The axfor Authors
// Licensed under the Apache License, Version 2.0

//go:build cgo

package store

import (
	"os"
	"testing"
)

func createTestRocksEngine(t *testing.T) *RocksEngine {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "rocksdb-store-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	e, err := OpenRocksEngine(tmpDir)
	if err != nil {
		t.Fatalf("OpenRocksEngine: %v", err)
	}
	t.Cleanup(func() { e.Close() })

	return e
}

func TestRocksEnginePutGet(t *testing.T) {
	e := createTestRocksEngine(t)

	b := e.NewWriteBatch()
	b.Put([]byte("a"), []byte("1"))
	b.Put([]byte("b"), []byte("2"))
	if err := e.Write(b); err != nil {
		t.Fatal(err)
	}

	v, ok, err := e.Get([]byte("a"))
	if err != nil || !ok || string(v) != "1" {
		t.Fatalf("Get(a) = %q, %v, %v", v, ok, err)
	}

	if _, ok, _ := e.Get([]byte("missing")); ok {
		t.Fatal("expected missing key to be absent")
	}
}

func TestRocksEngineDeleteRange(t *testing.T) {
	e := createTestRocksEngine(t)

	b := e.NewWriteBatch()
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		b.Put([]byte(k), []byte(k))
	}
	if err := e.Write(b); err != nil {
		t.Fatal(err)
	}

	b2 := e.NewWriteBatch()
	b2.DeleteRange([]byte("b"), []byte("d"))
	if err := e.Write(b2); err != nil {
		t.Fatal(err)
	}

	for _, k := range []string{"b", "c"} {
		if _, ok, _ := e.Get([]byte(k)); ok {
			t.Errorf("expected %q deleted", k)
		}
	}
	for _, k := range []string{"a", "d", "e"} {
		if _, ok, _ := e.Get([]byte(k)); !ok {
			t.Errorf("expected %q to remain", k)
		}
	}
}

func TestRocksEngineIteratorOrder(t *testing.T) {
	e := createTestRocksEngine(t)

	b := e.NewWriteBatch()
	for _, k := range []string{"c", "a", "b"} {
		b.Put([]byte(k), []byte(k))
	}
	if err := e.Write(b); err != nil {
		t.Fatal(err)
	}

	it := e.NewIterator()
	defer it.Close()

	var order []string
	for it.SeekToFirst(); it.Valid(); it.Next() {
		order = append(order, string(it.Key()))
	}
	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestRocksEngineReopenPersists(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "rocksdb-store-reopen-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	e, err := OpenRocksEngine(tmpDir)
	if err != nil {
		t.Fatalf("OpenRocksEngine: %v", err)
	}
	b := e.NewWriteBatch()
	b.Put([]byte("durable"), []byte("yes"))
	if err := e.Write(b); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	e2, err := OpenRocksEngine(tmpDir)
	if err != nil {
		t.Fatalf("reopen OpenRocksEngine: %v", err)
	}
	defer e2.Close()

	v, ok, err := e2.Get([]byte("durable"))
	if err != nil || !ok || string(v) != "yes" {
		t.Fatalf("Get(durable) after reopen = %q, %v, %v", v, ok, err)
	}
}
