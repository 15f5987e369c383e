// Package config loads and validates runtime settings for the blink game.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name read by Load.
const EnvPrefix = "BLINK_"

// Config holds every tunable of the game and its supporting services.
type Config struct {
	// Camera
	CameraID    int `validate:"gte=0"`
	FrameWidth  int `validate:"gt=0"`
	FrameHeight int `validate:"gt=0"`

	// Classifier models
	CascadeDir string `validate:"required"`

	// Usable face size band, in pixels of face width (inclusive).
	FaceMinWidth int `validate:"gt=0"`
	FaceMaxWidth int `validate:"gtefield=FaceMinWidth"`

	FaceScaleFactor  float64 `validate:"gt=1"`
	FaceMinNeighbors int     `validate:"gte=0"`
	FaceMinSize      int     `validate:"gt=0"`

	EyeScaleFactor  float64 `validate:"gt=1"`
	EyeMinNeighbors int     `validate:"gte=0"`
	EyeMinSize      int     `validate:"gt=0"`

	// ClosedEyeMaxHits is the largest combined eye hit count still read as closed.
	ClosedEyeMaxHits int `validate:"gte=0"`
	// ClosedFramesRequired consecutive closed verdicts end an armed session.
	ClosedFramesRequired int  `validate:"gte=1"`
	RequireSingleFace    bool

	// Keyboard
	StartKey     int           `validate:"gte=0"`
	CancelKey    int           `validate:"gte=0"`
	StartWait    time.Duration `validate:"gte=0"`
	CancelPoll   time.Duration `validate:"gte=0"`
	TerminalWait time.Duration `validate:"gte=0"`

	// FrameInterval is the minimum time between frames; zero disables pacing.
	FrameInterval time.Duration `validate:"gte=0"`
	ShowFPS       bool
	WindowTitle   string `validate:"required"`

	// Persistence and results server
	DBPath   string
	HTTPAddr string

	// MQTTBroker, when set, receives every session event under MQTTTopic.
	MQTTBroker string
	MQTTTopic  string `validate:"required"`
	MQTTQoS    int    `validate:"gte=0,lte=2"`

	// Logging
	LogLevel string `validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFile  string
}

// Default returns a Config tuned for a 640x480 webcam at arm's length.
func Default() Config {
	return Config{
		CameraID:             0,
		FrameWidth:           640,
		FrameHeight:          480,
		CascadeDir:           "haarcascades",
		FaceMinWidth:         180,
		FaceMaxWidth:         240,
		FaceScaleFactor:      1.11,
		FaceMinNeighbors:     3,
		FaceMinSize:          100,
		EyeScaleFactor:       1.11,
		EyeMinNeighbors:      3,
		EyeMinSize:           8,
		ClosedEyeMaxHits:     2,
		ClosedFramesRequired: 1,
		RequireSingleFace:    false,
		StartKey:             's',
		CancelKey:            27,
		StartWait:            100 * time.Millisecond,
		CancelPoll:           time.Millisecond,
		TerminalWait:         100 * time.Millisecond,
		FrameInterval:        0,
		ShowFPS:              false,
		WindowTitle:          "frame",
		DBPath:               "",
		HTTPAddr:             "",
		MQTTBroker:           "",
		MQTTTopic:            "blinkgame/events",
		MQTTQoS:              0,
		LogLevel:             "info",
		LogFile:              "",
	}
}

var validate = validator.New()

// Validate checks the configuration for values the game cannot run with.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load builds a Config from defaults, an optional dotenv file and BLINK_*
// environment variables, in increasing order of precedence. A missing
// dotenv file is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	ints := map[string]*int{
		"CAMERA_ID":              &cfg.CameraID,
		"FRAME_WIDTH":            &cfg.FrameWidth,
		"FRAME_HEIGHT":           &cfg.FrameHeight,
		"FACE_MIN_WIDTH":         &cfg.FaceMinWidth,
		"FACE_MAX_WIDTH":         &cfg.FaceMaxWidth,
		"FACE_MIN_NEIGHBORS":     &cfg.FaceMinNeighbors,
		"FACE_MIN_SIZE":          &cfg.FaceMinSize,
		"EYE_MIN_NEIGHBORS":      &cfg.EyeMinNeighbors,
		"EYE_MIN_SIZE":           &cfg.EyeMinSize,
		"CLOSED_EYE_MAX_HITS":    &cfg.ClosedEyeMaxHits,
		"CLOSED_FRAMES_REQUIRED": &cfg.ClosedFramesRequired,
		"START_KEY":              &cfg.StartKey,
		"CANCEL_KEY":             &cfg.CancelKey,
		"MQTT_QOS":               &cfg.MQTTQoS,
	}
	for name, dst := range ints {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}

	floats := map[string]*float64{
		"FACE_SCALE_FACTOR": &cfg.FaceScaleFactor,
		"EYE_SCALE_FACTOR":  &cfg.EyeScaleFactor,
	}
	for name, dst := range floats {
		if v, ok := lookup(name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = f
		}
	}

	durations := map[string]*time.Duration{
		"START_WAIT":     &cfg.StartWait,
		"CANCEL_POLL":    &cfg.CancelPoll,
		"TERMINAL_WAIT":  &cfg.TerminalWait,
		"FRAME_INTERVAL": &cfg.FrameInterval,
	}
	for name, dst := range durations {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = d
		}
	}

	bools := map[string]*bool{
		"REQUIRE_SINGLE_FACE": &cfg.RequireSingleFace,
		"SHOW_FPS":            &cfg.ShowFPS,
	}
	for name, dst := range bools {
		if v, ok := lookup(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}

	strs := map[string]*string{
		"CASCADE_DIR":  &cfg.CascadeDir,
		"WINDOW_TITLE": &cfg.WindowTitle,
		"DB_PATH":      &cfg.DBPath,
		"HTTP_ADDR":    &cfg.HTTPAddr,
		"MQTT_BROKER":  &cfg.MQTTBroker,
		"MQTT_TOPIC":   &cfg.MQTTTopic,
		"LOG_LEVEL":    &cfg.LogLevel,
		"LOG_FILE":     &cfg.LogFile,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
