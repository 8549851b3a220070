/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func captureStderr(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stderr
	stderr = &buf
	t.Cleanup(func() {
		stderr = old
		Init(Options{Level: "info"})
	})
	return &buf
}

// TestInitWritesJSONFile checks that a configured log file receives JSON
// records carrying the static and component attributes.
func TestInitWritesJSONFile(t *testing.T) {
	captureStderr(t)
	fpath := filepath.Join(t.TempDir(), "kv.log")

	Init(Options{Level: "debug", Format: "console", File: fpath})
	l := WithOperation(WithComponent("loader"), "load")
	l.Info("parsed file", slog.Int("readings", 3))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("log file is empty")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", last, err)
	}
	for k, want := range map[string]any{"msg": "parsed file", "app": "kistlerview", "component": "loader", "op": "load", "readings": float64(3)} {
		if m[k] != want {
			t.Fatalf("%s = %v, want %v (record %v)", k, m[k], want, m)
		}
	}
}

func TestConsoleFormat(t *testing.T) {
	buf := captureStderr(t)
	Init(Options{Level: "warn"})

	L().Info("hidden")
	L().Warn("load failed", slog.String("path", "/tmp/run 1.csv"), slog.Float64("peak", 5.2))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "WRN load failed") {
		t.Fatalf("missing level/message: %q", out)
	}
	if !strings.Contains(out, `path="/tmp/run 1.csv"`) || !strings.Contains(out, "peak=5.2") {
		t.Fatalf("attrs not rendered: %q", out)
	}
}

func TestLineHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	var h slog.Handler = &lineHandler{level: slog.LevelDebug, w: &buf}
	h = h.WithAttrs([]slog.Attr{slog.String("component", "ui")}).WithGroup("row")

	r := slog.NewRecord(time.Now(), slog.LevelError, "select", 0)
	r.AddAttrs(slog.Int("index", 4))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ERR select component=ui row.index=4") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvSource, "yes")
	t.Setenv(EnvFile, "")

	o := FromEnv()
	if o.Level != "debug" || o.Format != "json" || !o.AddSource || o.File != "" {
		t.Fatalf("FromEnv = %+v", o)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
