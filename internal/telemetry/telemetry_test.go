/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu      sync.Mutex
	events  [][]byte
	crashes [][]byte
}

func (r *recorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.events = append(r.events, b)
		r.mu.Unlock()
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.crashes = append(r.crashes, b)
		r.mu.Unlock()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events), len(r.crashes)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClient_CommandEventAndUploadCrash(t *testing.T) {
	var rec recorder
	srv := rec.server(t)

	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()
	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}

	c.Command("add", 42*time.Millisecond, errors.New("boom"))
	c.Flush(context.Background())
	waitFor(t, func() bool { n, _ := rec.counts(); return n > 0 })

	rec.mu.Lock()
	first := rec.events[0]
	rec.mu.Unlock()
	var m map[string]any
	if err := json.Unmarshal(first, &m); err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if m["name"] != "command" || m["command"] != "add" {
		t.Fatalf("unexpected event: %v", m)
	}
	if m["ok"] != false {
		t.Fatalf("expected ok=false for failed command, got %v", m["ok"])
	}
	if ms, _ := m["ms"].(float64); ms != 42 {
		t.Fatalf("expected ms=42, got %v", m["ms"])
	}
	if _, ok := m["ts"].(string); !ok {
		t.Fatalf("missing ts field")
	}

	c.UploadCrash([]byte("STACKTRACE"))
	waitFor(t, func() bool { _, n := rec.counts(); return n > 0 })
	rec.mu.Lock()
	got := string(rec.crashes[0])
	rec.mu.Unlock()
	if got != "STACKTRACE" {
		t.Fatalf("crash body mismatch: %q", got)
	}
}

func TestFromEnvAndDefaultClient(t *testing.T) {
	t.Setenv(EnvOptIn, "yes")
	t.Setenv(EnvEventsURL, " http://127.0.0.1:0 ")
	t.Setenv(EnvCrashURL, "")
	t.Setenv(EnvTimeoutMs, "100")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "http://127.0.0.1:0" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("FromEnv did not parse correctly: %+v", cfg)
	}

	NewDefault(cfg)
	if !Enabled() {
		t.Fatalf("default Enabled should be true with env config")
	}
	NewDefault(cfg.WithOptIn(false))
	if Enabled() {
		t.Fatalf("WithOptIn(false) should disable the default client")
	}
}

func TestFromEnv_BadTimeoutKeepsDefault(t *testing.T) {
	t.Setenv(EnvTimeoutMs, "soon")
	if got := FromEnv().Timeout; got != defaultTimeout {
		t.Fatalf("timeout = %v, want %v", got, defaultTimeout)
	}
}
