/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

type memStore map[string]string

func (m memStore) Get(service, key string) (string, error) {
	v, ok := m[service+"/"+key]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}
func (m memStore) Set(service, key, value string) error { m[service+"/"+key] = value; return nil }
func (m memStore) Delete(service, key string) error {
	if _, ok := m[service+"/"+key]; !ok {
		return keyring.ErrNotFound
	}
	delete(m, service+"/"+key)
	return nil
}

// isolate points the config at a temp file and stubs the keyring.
func isolate(t *testing.T) (string, memStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigPath, path)
	store := memStore{}
	t.Cleanup(SetTokenStore(store))
	return path, store
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, pw, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.HistoryLimit != 50 || pw != "" {
		t.Fatalf("unexpected defaults: %+v pw=%q", cfg.Editor, pw)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	_, store := isolate(t)
	cfg := Defaults()
	cfg.Editor.HistoryLimit = 20
	cfg.Library.DSN = "postgres://team@db:5432/forms"
	if err := Save(cfg, "s3cret"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if store["FormDesigner/library_password"] != "s3cret" {
		t.Fatalf("password not stored in keyring")
	}
	got, pw, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Editor.HistoryLimit != 20 || got.Library.DSN != cfg.Library.DSN || pw != "s3cret" {
		t.Fatalf("round trip mismatch: %+v pw=%q", got, pw)
	}
	if err := ForgetPassword(); err != nil {
		t.Fatalf("ForgetPassword() error: %v", err)
	}
	if err := ForgetPassword(); err != nil {
		t.Fatalf("second ForgetPassword() should ignore a missing entry: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvHistoryLimit, "7")
	t.Setenv(EnvTelemetryOptIn, "yes")
	t.Setenv(EnvLibraryDSN, "postgres://env/db")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.HistoryLimit != 7 || !cfg.General.TelemetryOptIn || cfg.Library.DSN != "postgres://env/db" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if name, ok := EnvOverrideFor("editor.history_limit"); !ok || name != EnvHistoryLimit {
		t.Fatalf("EnvOverrideFor mismatch: %q %v", name, ok)
	}
	if _, ok := EnvOverrideFor("logging.file"); ok {
		t.Fatalf("unset env must not report an override")
	}
}

func TestUnreadableFileFallsBackToDefaults(t *testing.T) {
	path, _ := isolate(t)
	if err := os.WriteFile(path, []byte("editor: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.HistoryLimit != 50 {
		t.Fatalf("expected defaults, got %+v", cfg.Editor)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := AppConfig{Logging: LoggingConfig{Level: " DEBUG ", Format: "json", Source: true, File: " app.log "}}
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "app.log" {
		t.Fatalf("logging not merged: %+v", dst.Logging)
	}
	opts := dst.Logging.LogOptions()
	if opts.Level != "debug" || !opts.AddSource {
		t.Fatalf("LogOptions mismatch: %+v", opts)
	}
	if dst.Editor.HistoryLimit != 50 {
		t.Fatalf("zero editor values must not override defaults")
	}
}

func TestLibraryTimeout(t *testing.T) {
	if got := (LibraryConfig{}).Timeout(); got != 15*time.Second {
		t.Fatalf("default timeout %v", got)
	}
	if got := (LibraryConfig{TimeoutMs: 250}).Timeout(); got != 250*time.Millisecond {
		t.Fatalf("timeout %v", got)
	}
}

func TestKeyringErrorsSurfaceOnSave(t *testing.T) {
	isolate(t)
	t.Cleanup(SetTokenStore(failingStore{}))
	if err := Save(Defaults(), "pw"); !errors.Is(err, errKeyring) {
		t.Fatalf("expected keyring error, got %v", err)
	}
}

var errKeyring = errors.New("keyring locked")

type failingStore struct{}

func (failingStore) Get(string, string) (string, error) { return "", errKeyring }
func (failingStore) Set(string, string, string) error   { return errKeyring }
func (failingStore) Delete(string, string) error        { return errKeyring }
