/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package calling

import (
	"sync"
	"testing"
	"time"

	"github.com/webexcommunity/calling-go-sdk/webexsdk"
)

type testLogger struct {
	t *testing.T
}

func (l testLogger) Printf(format string, v ...interface{}) {
	l.t.Logf(format, v...)
}

// newTestTransport builds a webexsdk client suitable for hitting httptest
// servers with absolute URLs.
func newTestTransport(t *testing.T) *webexsdk.Client {
	t.Helper()
	cfg := webexsdk.DefaultConfig()
	cfg.Timeout = 5 * time.Second
	client, err := webexsdk.NewClient("test-token", cfg)
	if err != nil {
		t.Fatalf("failed to create transport: %v", err)
	}
	return client
}

// eventRecorder captures client lifecycle events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []ClientEventKey
}

func (r *eventRecorder) record(event ClientEventKey, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) snapshot() []ClientEventKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ClientEventKey, len(r.events))
	copy(out, r.events)
	return out
}

func (r *eventRecorder) has(event ClientEventKey) bool {
	for _, e := range r.snapshot() {
		if e == event {
			return true
		}
	}
	return false
}

func (r *eventRecorder) count(event ClientEventKey) int {
	n := 0
	for _, e := range r.snapshot() {
		if e == event {
			n++
		}
	}
	return n
}

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

// testConfig returns a Config with all timers at millisecond scale.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.ClientDeviceURI = "https://wdm.example.com/devices/client-device-1"
	cfg.BaseRegistrationRetry = 5 * time.Millisecond
	cfg.BackoffUnit = time.Millisecond
	cfg.JitterMin = 1 * time.Millisecond
	cfg.JitterMax = 2 * time.Millisecond
	cfg.BackupSwitchThreshold = 40 * time.Millisecond
	cfg.KeepaliveInterval = 10 * time.Millisecond
	cfg.RehomingIntervalMin = 30
	cfg.RehomingIntervalMax = 40
	cfg.FailbackUnit = time.Millisecond
	cfg.Failback429RetryInterval = 10 * time.Millisecond
	cfg.NetworkFlapInterval = 10 * time.Millisecond
	return cfg
}
