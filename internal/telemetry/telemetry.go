/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry reports anonymous editor usage (which tools get used,
// how large exported drawings are) and uploads crash reports. Everything is
// strictly opt-in and a no-op without a configured endpoint.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	applog "govectoredit/internal/log"
	"govectoredit/internal/version"
)

// Config holds runtime configuration for telemetry and crash uploads.
//
// Environment variables (read by FromEnv):
// - GVE_TELEMETRY_OPT_IN: "1", "true", "yes" to enable metrics
// - GVE_TELEMETRY_URL: base URL to POST JSON events to
// - GVE_CRASH_UPLOAD_URL: URL to POST crash reports to
// - GVE_TELEMETRY_TIMEOUT_MS: optional request timeout, default 1500ms
// - GVE_TELEMETRY_DEBUG: if set, logs event send attempts
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

// FromEnv reads the telemetry configuration from the environment.
func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv("GVE_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("GVE_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("GVE_CRASH_UPLOAD_URL")),
		Timeout:      1500 * time.Millisecond,
		DebugLogging: os.Getenv("GVE_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("GVE_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil {
			cfg.Timeout = v
		}
	}
	return cfg
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// Event is one usage record. Editor-specific data travels in Fields so the
// top level stays a stable envelope.
type Event struct {
	Name    string         `json:"name"`
	TS      string         `json:"ts"`
	Version string         `json:"version"`
	OS      string         `json:"os"`
	Arch    string         `json:"arch"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Client queues events and posts them from a background worker. Events are
// dropped silently when the queue is full or a request fails; telemetry must
// never block or break the editor.
type Client struct {
	cfg   Config
	log   *slog.Logger
	httpc *http.Client
	queue chan Event
	once  sync.Once
	done  chan struct{}
}

// New constructs a client and starts its worker.
func New(cfg Config) *Client {
	c := &Client{
		cfg:   cfg,
		log:   applog.WithComponent("telemetry"),
		httpc: &http.Client{Timeout: cfg.Timeout},
		queue: make(chan Event, 64),
		done:  make(chan struct{}),
	}
	go c.worker()
	return c
}

// Enabled reports whether events would actually be sent.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Send queues one event. Fields must be non-PII; shape ids and coordinates
// never belong here, only kinds and counts.
func (c *Client) Send(name string, fields map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	ev := Event{
		Name:    name,
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Fields:  fields,
	}
	select {
	case c.queue <- ev:
	default:
		// full queue: drop
	}
}

// Flush waits briefly for the queue to drain.
func (c *Client) Flush(ctx context.Context) {
	deadline := time.Now().Add(500 * time.Millisecond)
	for len(c.queue) > 0 && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Close stops the background worker.
func (c *Client) Close() { c.once.Do(func() { close(c.done) }) }

func (c *Client) worker() {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.queue:
			c.post(ev)
		}
	}
}

func (c *Client) post(ev Event) {
	buf, err := json.Marshal(ev)
	if err != nil {
		return
	}
	req, err := http.NewRequest(http.MethodPost, c.cfg.EventsURL, bytes.NewReader(buf))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		if c.cfg.DebugLogging {
			c.log.Debug("event send failed", slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if c.cfg.DebugLogging {
		c.log.Debug("event sent", slog.String("name", ev.Name))
	}
}

// UploadCrash posts an already-serialized crash report to the crash URL.
// Runs in its own goroutine; a crashing process should not wait on it.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	go func(b []byte) {
		req, err := http.NewRequest(http.MethodPost, c.cfg.CrashURL, bytes.NewReader(b))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		resp, err := c.httpc.Do(req)
		if err != nil {
			if c.cfg.DebugLogging {
				c.log.Debug("crash upload failed", slog.Any("err", err))
			}
			return
		}
		_ = resp.Body.Close()
	}(append([]byte(nil), report...))
}

var (
	defaultClient *Client
	defaultOnce   sync.Once
)

func defaults() *Client {
	defaultOnce.Do(func() { defaultClient = New(FromEnv()) })
	return defaultClient
}

// The helpers below are the editor's whole event vocabulary; call sites never
// assemble event names or field maps themselves.

// AppStarted records an editor launch.
func AppStarted() { defaults().Send("app_start", nil) }

// ToolSelected records a toolbar tool switch.
func ToolSelected(tool string) {
	defaults().Send("tool_selected", map[string]any{"tool": tool})
}

// DocumentExported records an SVG export and how many shapes it contained.
func DocumentExported(shapes int) {
	defaults().Send("svg_export", map[string]any{"shapes": shapes})
}

// UploadCrash uploads a crash report through the default client.
func UploadCrash(report []byte) { defaults().UploadCrash(report) }
