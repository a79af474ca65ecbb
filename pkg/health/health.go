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

package health

import (
	"context"
	"fmt"
)

// Status represents the health status.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// CheckResult is the result of a single health check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// Checker is a single named health check.
type Checker interface {
	Check(ctx context.Context) (Status, string, error)
	Name() string
}

// StoreChecker checks whether the store is operational by calling an
// arbitrary probe function (typically a cheap Range against a sentinel
// key).
type StoreChecker struct {
	name      string
	checkFunc func(context.Context) error
}

// NewStoreChecker creates a store health checker.
func NewStoreChecker(name string, checkFunc func(context.Context) error) *StoreChecker {
	return &StoreChecker{name: name, checkFunc: checkFunc}
}

func (sc *StoreChecker) Name() string { return sc.name }

func (sc *StoreChecker) Check(ctx context.Context) (Status, string, error) {
	if err := sc.checkFunc(ctx); err != nil {
		return StatusUnhealthy, fmt.Sprintf("store check failed: %v", err), err
	}
	return StatusHealthy, "store is operational", nil
}

// DiskSpaceChecker checks available disk space under the store's
// state directory.
type DiskSpaceChecker struct {
	name          string
	path          string
	minFreeGB     int64
	warnThreshold int64 // percent used, e.g. 80
}

// NewDiskSpaceChecker creates a disk space checker.
func NewDiskSpaceChecker(name, path string, minFreeGB, warnThreshold int64) *DiskSpaceChecker {
	return &DiskSpaceChecker{name: name, path: path, minFreeGB: minFreeGB, warnThreshold: warnThreshold}
}

func (dsc *DiskSpaceChecker) Name() string { return dsc.name }

func (dsc *DiskSpaceChecker) Check(ctx context.Context) (Status, string, error) {
	totalGB, freeGB, usedPercent, err := getDiskUsage(dsc.path)
	if err != nil {
		return StatusUnhealthy, fmt.Sprintf("failed to get disk usage: %v", err), err
	}

	message := fmt.Sprintf("%.1fGB free of %.1fGB (%.1f%% used)", freeGB, totalGB, usedPercent)

	if freeGB < float64(dsc.minFreeGB) {
		return StatusUnhealthy, fmt.Sprintf("disk space critical: %s", message), nil
	}
	if usedPercent > float64(dsc.warnThreshold) {
		return StatusDegraded, fmt.Sprintf("disk space low: %s", message), nil
	}
	return StatusHealthy, message, nil
}
