// Package app runs the blink game: it owns the camera and window for the
// lifetime of one session and drives the frame loop.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/ayusman/blinkgame/internal/capture"
	"github.com/ayusman/blinkgame/internal/display"
	"github.com/ayusman/blinkgame/internal/game"
	"github.com/ayusman/blinkgame/internal/store"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Display presents frames and is the keyboard source.
type Display interface {
	Show(frame *gocv.Mat)
	PollKey(wait time.Duration) int
	Close() error
}

// Config holds configuration options for the frame loop.
type Config struct {
	// FrameInterval is the minimum time between frames; zero disables pacing.
	FrameInterval time.Duration
	ShowFPS       bool
}

// App plays a single game session.
type App struct {
	config     Config
	camera     capture.Camera
	display    Display
	controller *game.Controller
	pacer      *display.Pacer
	store      *store.Store
	log        logrus.FieldLogger
}

// New creates an App. The App takes ownership of camera and disp and
// releases both when Run returns.
func New(config Config, camera capture.Camera, disp Display, controller *game.Controller, log logrus.FieldLogger) *App {
	return &App{
		config:     config,
		camera:     camera,
		display:    disp,
		controller: controller,
		pacer:      display.NewPacer(config.FrameInterval),
		log:        log,
	}
}

// SetStore enables recording of finished sessions.
func (a *App) SetStore(s *store.Store) {
	a.store = s
}

// Run opens the camera, plays one session and, if it ended on a blink,
// keeps the final frame up until the cancel key is pressed. Camera and
// window are released on every return path. A cancelled ctx ends the run
// without error.
func (a *App) Run(ctx context.Context) (*game.Session, error) {
	defer a.release()

	if err := a.camera.Open(); err != nil {
		return nil, err
	}
	a.log.Info("camera opened")

	s := game.NewSession()
	log := a.log.WithField("session_id", s.ID)

	err := a.loop(ctx, s)
	a.record(s)

	switch {
	case errors.Is(err, context.Canceled):
		log.Info("interrupted")
		return s, nil
	case err != nil:
		return s, err
	}

	if s.State() == game.Ended {
		log.Info("showing result, press cancel key to exit")
		if err := a.controller.AwaitDismiss(ctx, a.display); err != nil && !errors.Is(err, context.Canceled) {
			return s, err
		}
	}

	return s, nil
}

func (a *App) release() {
	if err := a.camera.Close(); err != nil {
		a.log.WithError(err).Warn("error closing camera")
	}
	if err := a.display.Close(); err != nil {
		a.log.WithError(err).Warn("error closing window")
	}
}

// record stores the result of a session that was armed.
func (a *App) record(s *game.Session) {
	if a.store == nil {
		return
	}
	start, armed := s.StartedAt()
	end, finished := s.EndedAt()
	if !armed || !finished {
		return
	}

	outcome := store.OutcomeBlinked
	if s.Cancelled() {
		outcome = store.OutcomeCancelled
	}
	face, _ := s.ArmedFace()

	res := &store.SessionResult{
		ID:             s.ID,
		StartedAt:      start,
		EndedAt:        end,
		ElapsedSeconds: s.ElapsedSeconds(end),
		Outcome:        outcome,
		FaceWidth:      face.W,
	}
	if err := a.store.Sessions().Create(res); err != nil {
		a.log.WithError(err).WithField("session_id", s.ID).Error("failed to record session")
		return
	}
	a.log.WithFields(logrus.Fields{
		"session_id":      s.ID,
		"outcome":         outcome,
		"elapsed_seconds": res.ElapsedSeconds,
	}).Info("session recorded")
}
