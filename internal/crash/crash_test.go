/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func withReportDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := reportDir
	reportDir = func() string { return dir }
	t.Cleanup(func() { reportDir = old })
	return dir
}

func TestWriteReport(t *testing.T) {
	dir := withReportDir(t)
	path, err := writeReport("/data/run_a.csv", "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("report written to %s, want dir %s", path, dir)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	for _, want := range []string{"Kistler Data Viewer Crash Report", "Loaded file: /data/run_a.csv", "Panic: boom", "stacktrace"} {
		if !strings.Contains(s, want) {
			t.Fatalf("report missing %q:\n%s", want, s)
		}
	}
}

func TestWriteReportWithoutSource(t *testing.T) {
	withReportDir(t)
	path, err := writeReport("", "x", nil)
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "Loaded file:") {
		t.Fatalf("unexpected source line:\n%s", b)
	}
}

func TestRecover(t *testing.T) {
	dir := withReportDir(t)

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(func() string { return "/data/b.csv" })
		panic("boom")
	}()

	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	files, _ := filepath.Glob(filepath.Join(dir, "kistlerview-crash-*.log"))
	if len(files) != 1 {
		t.Fatalf("expected one crash report, got %v", files)
	}
	b, _ := os.ReadFile(files[0])
	if !strings.Contains(string(b), "Panic: boom") || !strings.Contains(string(b), "/data/b.csv") {
		t.Fatalf("unexpected report:\n%s", b)
	}
}

func TestRecoverNoPanic(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(nil)
	}()
	if called {
		t.Fatal("exit called without a panic")
	}
}

func TestSafeSource(t *testing.T) {
	got := safeSource(func() string { panic("again") })
	if got != "<unavailable>" {
		t.Fatalf("got %q", got)
	}
}
