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
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"formdesigner/internal/design"
	"formdesigner/internal/domain"
)

// BackupsDirName holds timestamped copies of design files, next to them.
const BackupsDirName = ".backups"

const backupStamp = "20060102-150405.000"

// ErrExists is returned by Create when the target file is already present.
var ErrExists = errors.New("design file already exists")

// DesignHandle is a design file loaded from or saved to disk.
type DesignHandle struct {
	Path       string
	Components []domain.Component
}

// Create writes a new design file at path holding components.
func Create(path string, components []domain.Component) (*DesignHandle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("design path is required")
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create design dir: %w", err)
	}
	h := &DesignHandle{Path: path, Components: components}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads the design at path. If the file cannot be read or parsed,
// the latest backup is tried.
func Open(path string) (*DesignHandle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		cs, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open design: %w; backup attempt: %v", err, berr)
		}
		return &DesignHandle{Path: path, Components: cs}, nil
	}
	cs, derr := design.Decode(b)
	if derr != nil {
		cs, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("parse design: %w; backup attempt: %v", derr, berr)
		}
		return &DesignHandle{Path: path, Components: cs}, nil
	}
	return &DesignHandle{Path: path, Components: cs}, nil
}

// Save writes h to disk atomically, keeping a timestamped backup of the
// previous file.
func Save(h *DesignHandle) error {
	if h == nil {
		return errors.New("nil DesignHandle")
	}
	if h.Path == "" {
		return errors.New("invalid DesignHandle: missing path")
	}
	data, err := design.Encode(h.Components)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if _, statErr := os.Stat(h.Path); statErr == nil {
		bdir := backupsDir(h.Path)
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return fmt.Errorf("ensure backups dir: %w", err)
		}
		bname := fmt.Sprintf("%s.%s.bak", filepath.Base(h.Path), time.Now().Format(backupStamp))
		if cerr := copyFile(h.Path, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current design: %w", cerr)
		}
	}
	return writeAtomic(h.Path, data)
}

// AutosaveCrashSnapshot writes the in-memory design next to the backups
// without touching the design file itself, and returns the written path.
func AutosaveCrashSnapshot(h *DesignHandle) (string, error) {
	if h == nil || h.Path == "" {
		return "", errors.New("invalid DesignHandle")
	}
	data, err := design.Encode(h.Components)
	if err != nil {
		return "", err
	}
	bdir := backupsDir(h.Path)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	path := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", filepath.Base(h.Path), time.Now().Format(backupStamp)))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// PruneBackups keeps the newest keep backups of h and removes the rest.
// It returns the number of files removed.
func PruneBackups(h *DesignHandle, keep int) (int, error) {
	if h == nil {
		return 0, errors.New("nil DesignHandle")
	}
	if keep < 0 {
		keep = 0
	}
	bs, err := listBackups(h.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for len(bs) > keep {
		if err := os.Remove(bs[0]); err != nil {
			return removed, fmt.Errorf("remove backup: %w", err)
		}
		bs = bs[1:]
		removed++
	}
	return removed, nil
}

// Backups lists the backup files of the design at path, oldest first.
func Backups(path string) ([]string, error) {
	bs, err := listBackups(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return bs, err
}

func backupsDir(path string) string {
	return filepath.Join(filepath.Dir(path), BackupsDirName)
}

func listBackups(path string) ([]string, error) {
	bdir := backupsDir(path)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, err
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

func openFromLatestBackup(path string) ([]domain.Component, error) {
	bs, err := listBackups(path)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	if len(bs) == 0 {
		return nil, errors.New("no backups found")
	}
	b, err := os.ReadFile(bs[len(bs)-1])
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	cs, err := design.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return cs, nil
}

// writeAtomic writes to a temp file in the target directory and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp design: %w", err)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace design: %w", err)
	}
	return nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
