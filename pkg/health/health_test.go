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
	"errors"
	"testing"
)

func TestStoreCheckerHealthy(t *testing.T) {
	c := NewStoreChecker("store", func(context.Context) error { return nil })
	status, msg, err := c.Check(context.Background())
	if status != StatusHealthy || err != nil || msg == "" {
		t.Errorf("got status=%v msg=%q err=%v, want healthy", status, msg, err)
	}
	if c.Name() != "store" {
		t.Errorf("Name() = %q, want store", c.Name())
	}
}

func TestStoreCheckerUnhealthy(t *testing.T) {
	want := errors.New("boom")
	c := NewStoreChecker("store", func(context.Context) error { return want })
	status, _, err := c.Check(context.Background())
	if status != StatusUnhealthy || !errors.Is(err, want) {
		t.Errorf("got status=%v err=%v, want unhealthy/%v", status, err, want)
	}
}

func TestDiskSpaceCheckerAgainstTempDir(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskSpaceChecker("disk", dir, 0, 100)
	status, msg, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusHealthy {
		t.Errorf("status = %v, want healthy (minFreeGB=0, warnThreshold=100%%): %s", status, msg)
	}
}
