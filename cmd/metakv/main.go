// Copyright 2025 The axfor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command metakv opens an embedded MVCC store and runs a short
// scripted sequence of operations against it, wiring up the same
// config/log/metrics/health stack a host process embedding the store
// would use.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"metakv/internal/mvcc"
	"metakv/pkg/config"
	"metakv/pkg/health"
	"metakv/pkg/log"
	"metakv/pkg/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "metakv:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	stateDir := flag.String("state-dir", "./metakv-data", "local state directory")
	name := flag.String("name", "metakv-demo", "store name")
	metricsAddr := flag.String("metrics-addr", ":9090", "address to serve /metrics on")
	logRotateFile := flag.String("log-rotate-file", "", "if set, log to this file with size/age-based rotation instead of the configured output paths")
	flag.Parse()

	cfg, err := config.LoadConfigOrDefault(*configPath, *name, *stateDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var logger *log.Logger
	if *logRotateFile != "" {
		logger, err = log.NewRotatingLogger(&log.Config{
			Level:    cfg.Store.Log.Level,
			Encoding: cfg.Store.Log.Encoding,
		}, log.RotationConfig{
			Filename:   *logRotateFile,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 10,
			Compress:   true,
		})
		if err != nil {
			return fmt.Errorf("init rotating logger: %w", err)
		}
		log.ReplaceGlobalLogger(logger)
	} else {
		if err := log.InitFromConfig(&cfg.Store.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = log.GetLogger()
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	metricsServer := metrics.ServeMetrics(*metricsAddr, registry, logger.Zap())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsServer.Shutdown(ctx)
	}()

	storeMetrics := mvcc.NewMetrics(registry)
	store := mvcc.NewStore(defaultOpener, mvcc.WithLogger(logger), mvcc.WithMetrics(storeMetrics))

	spec := config.NewStoreSpec(*cfg, mvcc.RawBytes(), mvcc.RawBytes())
	if err := store.Init(spec); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	typed, err := mvcc.NewTypedStoreFromSpec[[]byte, []byte](store, spec)
	if err != nil {
		return fmt.Errorf("build typed store: %w", err)
	}

	checkers := []health.Checker{
		health.NewStoreChecker("store", func(ctx context.Context) error {
			op, err := mvcc.NewRangeOp().SingleKey([]byte("__health__")).Build()
			if err != nil {
				return err
			}
			r, err := store.Range(op)
			if err != nil {
				return err
			}
			r.Recycle()
			return nil
		}),
		health.NewDiskSpaceChecker("disk", cfg.Store.LocalStateStoreDir, 1, 90),
	}
	for _, c := range checkers {
		status, msg, err := c.Check(context.Background())
		logger.Infof("health check %s: status=%s msg=%s err=%v", c.Name(), status, msg, err)
	}

	return runDemo(store, typed, logger)
}

// runDemo drives the puts, the range and the delete through the typed
// facade: those keys and values are application-level []byte that the
// codec pair recovered from spec encodes/decodes around the byte-level
// store. The one transaction is built from byte-level ops and sent
// through store.Txn directly.
func runDemo(store *mvcc.Store, typed *mvcc.TypedStore[[]byte, []byte], logger *log.Logger) error {
	rev := int64(1)
	next := func() mvcc.Revision { r := mvcc.Revision(rev); rev++; return r }

	for _, kv := range [][2]string{{"users/alice", "v1"}, {"users/bob", "v1"}, {"users/carol", "v1"}} {
		r, err := typed.Put([]byte(kv[0]), []byte(kv[1]), next(), false)
		if err != nil {
			return err
		}
		logger.Infof("put %s -> code=%s create_rev=%d", kv[0], r.Code, r.Revision)
		r.Recycle()
	}

	kvs, hasMore, err := typed.Range([]byte("users/"), []byte("users0"), 0)
	if err != nil {
		return err
	}
	logger.Infof("range users/ prefix: %d keys (has_more=%v)", len(kvs), hasMore)
	for _, kv := range kvs {
		logger.Infof("  %s = %s (mod_rev=%d)", kv.Key, kv.Value, kv.ModRevision)
	}

	cmp, err := mvcc.NewCompareOp([]byte("users/alice")).
		Target(mvcc.TargetValue).Result(mvcc.ResultEqual).Value([]byte("v1")).Build()
	if err != nil {
		return err
	}
	put, err := mvcc.NewPutOp([]byte("users/alice")).Value([]byte("v2")).Revision(next()).Build()
	if err != nil {
		return err
	}
	txn, err := mvcc.NewTxnOp().Revision(mvcc.Revision(rev)).If(cmp).Then(put).Build()
	if err != nil {
		return err
	}
	tr, err := store.Txn(txn)
	if err != nil {
		return err
	}
	logger.Infof("txn success=%v", tr.Success)
	tr.Recycle()

	dr, err := typed.Delete([]byte("users/bob"), next(), true)
	if err != nil {
		return err
	}
	logger.Infof("deleted users/bob: num_deleted=%d", dr.NumDeleted)
	dr.Recycle()

	return nil
}
