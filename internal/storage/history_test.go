/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"formdesigner/internal/undo"
)

func TestHistoryStacksRoundTrip(t *testing.T) {
	design := filepath.Join(t.TempDir(), "form.json")
	ctx := context.Background()
	s, err := OpenHistory(design)
	if err != nil {
		t.Fatalf("OpenHistory error: %v", err)
	}
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	u := []undo.Snapshot{{Blob: []byte("u1"), TS: ts, Label: "insert"}, {Blob: []byte("u2"), TS: ts, Label: "move"}}
	r := []undo.Snapshot{{Blob: []byte("r1"), TS: ts, Label: "undo"}}
	if err := s.SaveStacks(ctx, "d1", u, r); err != nil {
		t.Fatalf("SaveStacks error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	s, err = OpenHistory(design)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer func() { _ = s.Close() }()
	gu, gr, err := s.LoadStacks(ctx, "d1")
	if err != nil {
		t.Fatalf("LoadStacks error: %v", err)
	}
	if len(gu) != 2 || string(gu[0].Blob) != "u1" || gu[1].Label != "move" || !gu[0].TS.Equal(ts) {
		t.Fatalf("undo stack mismatch: %+v", gu)
	}
	if len(gr) != 1 || string(gr[0].Blob) != "r1" {
		t.Fatalf("redo stack mismatch: %+v", gr)
	}
	if v, err := s.SchemaVersion(ctx); err != nil || v != schemaVersion {
		t.Fatalf("schema version %d, err %v", v, err)
	}
}

func TestHistoryStaleDigestDiscards(t *testing.T) {
	design := filepath.Join(t.TempDir(), "form.json")
	ctx := context.Background()
	s, err := OpenHistory(design)
	if err != nil {
		t.Fatalf("OpenHistory error: %v", err)
	}
	defer func() { _ = s.Close() }()
	if u, r, err := s.LoadStacks(ctx, "any"); err != nil || u != nil || r != nil {
		t.Fatalf("fresh workspace should be empty: %v %v %v", u, r, err)
	}
	if err := s.SaveStacks(ctx, Digest([]byte("v1")), []undo.Snapshot{{Blob: []byte("x"), TS: time.Now()}}, nil); err != nil {
		t.Fatalf("SaveStacks error: %v", err)
	}
	u, _, err := s.LoadStacks(ctx, Digest([]byte("v2")))
	if err != nil || len(u) != 0 {
		t.Fatalf("stale history should be discarded: %v %v", u, err)
	}
	if err := s.SaveStacks(ctx, Digest([]byte("v2")), nil, nil); err != nil {
		t.Fatalf("SaveStacks error: %v", err)
	}
	if u, _, _ := s.LoadStacks(ctx, Digest([]byte("v2"))); len(u) != 0 {
		t.Fatalf("SaveStacks must replace earlier entries")
	}
}

func TestWorkspacePath(t *testing.T) {
	got := WorkspacePath(filepath.Join("forms", "signup.json"))
	want := filepath.Join("forms", WorkDirName, "signup.sqlite")
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}
