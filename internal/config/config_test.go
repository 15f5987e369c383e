package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	if cfg.FaceMinWidth != 180 || cfg.FaceMaxWidth != 240 {
		t.Errorf("face band = [%d, %d], want [180, 240]", cfg.FaceMinWidth, cfg.FaceMaxWidth)
	}
	if cfg.ClosedEyeMaxHits != 2 {
		t.Errorf("ClosedEyeMaxHits = %d, want 2", cfg.ClosedEyeMaxHits)
	}
	if cfg.StartKey != 's' || cfg.CancelKey != 27 {
		t.Errorf("keys = (%d, %d), want (115, 27)", cfg.StartKey, cfg.CancelKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "inverted face band",
			mutate:  func(c *Config) { c.FaceMinWidth, c.FaceMaxWidth = 240, 180 },
			wantErr: "FaceMaxWidth",
		},
		{
			name:    "scale factor of one",
			mutate:  func(c *Config) { c.FaceScaleFactor = 1.0 },
			wantErr: "FaceScaleFactor",
		},
		{
			name:    "zero closed frames",
			mutate:  func(c *Config) { c.ClosedFramesRequired = 0 },
			wantErr: "ClosedFramesRequired",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: "LogLevel",
		},
		{
			name:    "empty cascade dir",
			mutate:  func(c *Config) { c.CascadeDir = "" },
			wantErr: "CascadeDir",
		},
		{
			name:    "qos out of range",
			mutate:  func(c *Config) { c.MQTTQoS = 3 },
			wantErr: "MQTTQoS",
		},
		{
			name:   "equal band bounds",
			mutate: func(c *Config) { c.FaceMinWidth, c.FaceMaxWidth = 200, 200 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BLINK_FACE_MIN_WIDTH", "150")
	t.Setenv("BLINK_FACE_MAX_WIDTH", "300")
	t.Setenv("BLINK_EYE_SCALE_FACTOR", "1.2")
	t.Setenv("BLINK_FRAME_INTERVAL", "33ms")
	t.Setenv("BLINK_SHOW_FPS", "true")
	t.Setenv("BLINK_HTTP_ADDR", ":9090")
	t.Setenv("BLINK_MQTT_BROKER", "tcp://localhost:1883")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.FaceMinWidth != 150 || cfg.FaceMaxWidth != 300 {
		t.Errorf("face band = [%d, %d], want [150, 300]", cfg.FaceMinWidth, cfg.FaceMaxWidth)
	}
	if cfg.EyeScaleFactor != 1.2 {
		t.Errorf("EyeScaleFactor = %v, want 1.2", cfg.EyeScaleFactor)
	}
	if cfg.FrameInterval != 33*time.Millisecond {
		t.Errorf("FrameInterval = %v, want 33ms", cfg.FrameInterval)
	}
	if !cfg.ShowFPS {
		t.Error("ShowFPS = false, want true")
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" || cfg.MQTTTopic != "blinkgame/events" {
		t.Errorf("MQTT = (%q, %q), want broker override and default topic", cfg.MQTTBroker, cfg.MQTTTopic)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("BLINK_CLOSED_FRAMES_REQUIRED=3\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("BLINK_CLOSED_FRAMES_REQUIRED") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ClosedFramesRequired != 3 {
		t.Errorf("ClosedFramesRequired = %d, want 3", cfg.ClosedFramesRequired)
	}
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("Load() with missing file error = %v, want nil", err)
	}
}

func TestLoad_BadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric int", "BLINK_CAMERA_ID", "front"},
		{"bad duration", "BLINK_START_WAIT", "soon"},
		{"bad bool", "BLINK_SHOW_FPS", "maybe"},
		{"fails validation", "BLINK_EYE_MIN_SIZE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(""); err == nil {
				t.Errorf("Load() with %s=%s error = nil, want error", tt.key, tt.value)
			}
		})
	}
}
