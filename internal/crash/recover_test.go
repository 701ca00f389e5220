/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"formdesigner/internal/design"
	"formdesigner/internal/domain"
	"formdesigner/internal/storage"
)

// Recover must write a report and a crash snapshot, then ask to exit with 2.
func TestRecover_WritesReportAndSnapshot(t *testing.T) {
	var out bytes.Buffer
	oldStderr := stderr
	stderr = &out
	defer func() { stderr = oldStderr }()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	h := &storage.DesignHandle{
		Path: filepath.Join(dir, "form.json"),
		Components: []domain.Component{{
			ID:    "c1",
			Type:  "switch",
			Props: domain.DecodeProps("switch", map[string]any{"label": "Newsletter"}),
		}},
	}

	func() {
		defer Recover(h)
		panic("boom")
	}()

	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
	if !strings.Contains(out.String(), "crash report was saved") {
		t.Fatalf("missing user message: %q", out.String())
	}

	bdir := filepath.Join(dir, storage.BackupsDirName)
	files, err := os.ReadDir(bdir)
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	var report, snapshot string
	for _, f := range files {
		switch {
		case strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log"):
			report = filepath.Join(bdir, f.Name())
		case strings.HasPrefix(f.Name(), "form.json.crash-"):
			snapshot = filepath.Join(bdir, f.Name())
		}
	}
	if report == "" || snapshot == "" {
		t.Fatalf("expected report and snapshot, got %v", files)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", b)
	}
	sb, err := os.ReadFile(snapshot)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	cs, err := design.Decode(sb)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(cs) != 1 || cs[0].ID != "c1" {
		t.Fatalf("unexpected snapshot content: %+v", cs)
	}
}

func TestRecover_NoPanicIsNoop(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(nil)
	}()
	if called {
		t.Fatalf("exit must not be called without a panic")
	}
}
