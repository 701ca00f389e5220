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
	"testing"
	"time"
)

func TestCommand_DisabledSendsNothing(t *testing.T) {
	var rec recorder
	srv := rec.server(t)

	c := New(Config{OptIn: false, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: time.Second})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("expected disabled client")
	}
	c.Command("move", time.Millisecond, errors.New("ignored"))
	c.UploadCrash([]byte("ignored"))

	// Opted in without an events URL is disabled as well.
	c2 := New(Config{OptIn: true, Timeout: time.Second})
	defer c2.Close()
	c2.Command("move", time.Millisecond, nil)
	c2.Flush(context.Background())

	var nilClient *Client
	nilClient.Command("move", time.Millisecond, nil)
	nilClient.Flush(context.Background())

	time.Sleep(50 * time.Millisecond)
	if e, cr := rec.counts(); e != 0 || cr != 0 {
		t.Fatalf("expected no requests, got %d events and %d crashes", e, cr)
	}
}

func TestCommand_DefaultClientReportsSuccess(t *testing.T) {
	var rec recorder
	srv := rec.server(t)
	NewDefault(Config{OptIn: true, EventsURL: srv.URL + "/events", Timeout: time.Second})
	t.Cleanup(func() { NewDefault(Config{}) })

	Command("undo", 1500*time.Microsecond, nil)
	Flush(context.Background())
	waitFor(t, func() bool { n, _ := rec.counts(); return n > 0 })

	rec.mu.Lock()
	body := rec.events[0]
	rec.mu.Unlock()
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if m["command"] != "undo" || m["ok"] != true {
		t.Fatalf("unexpected event: %v", m)
	}
	if ms, _ := m["ms"].(float64); ms != 1 {
		t.Fatalf("expected ms truncated to 1, got %v", m["ms"])
	}
}
