package game

import (
	"context"
	"fmt"
	"time"

	"github.com/ayusman/blinkgame/internal/detector"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// NoKey is returned by a KeyPoller when no key was pressed.
const NoKey = -1

// KeyPoller reports the key pressed within wait, or NoKey.
type KeyPoller interface {
	PollKey(wait time.Duration) int
}

// Config holds the controller's tunables.
type Config struct {
	Rules     Rules
	StartKey  int
	CancelKey int
	// StartWait bounds the wait for the start key while prompting.
	StartWait time.Duration
	// CancelPoll bounds the per-frame cancel key poll.
	CancelPoll time.Duration
	// TerminalWait bounds each poll while the final frame is shown.
	TerminalWait time.Duration
}

// DefaultConfig returns the controller defaults: start on "s", cancel on ESC.
func DefaultConfig() Config {
	return Config{
		Rules:        DefaultRules(),
		StartKey:     's',
		CancelKey:    27,
		StartWait:    100 * time.Millisecond,
		CancelPoll:   time.Millisecond,
		TerminalWait: 100 * time.Millisecond,
	}
}

// Controller turns detections into session transitions. It keeps no
// per-game state of its own; everything lives in the Session passed in.
type Controller struct {
	config   Config
	face     detector.FaceDetector
	leftEye  detector.EyeDetector
	rightEye detector.EyeDetector
	events   Publisher
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewController creates a Controller using the given detectors.
func NewController(config Config, face detector.FaceDetector, leftEye, rightEye detector.EyeDetector, log logrus.FieldLogger) *Controller {
	if config.Rules.ClosedFramesRequired < 1 {
		config.Rules.ClosedFramesRequired = 1
	}
	return &Controller{
		config:   config,
		face:     face,
		leftEye:  leftEye,
		rightEye: rightEye,
		events:   nopPublisher{},
		now:      time.Now,
		log:      log,
	}
}

// SetPublisher sets where transition events are sent.
func (c *Controller) SetPublisher(p Publisher) {
	if p == nil {
		p = nopPublisher{}
	}
	c.events = p
}

// SetClock replaces the wall clock, for tests.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// Config returns the controller configuration.
func (c *Controller) Config() Config {
	return c.config
}

// DetectFace returns the first face the detector reports. With
// RequireSingleFace set, a frame with more than one face yields none.
func (c *Controller) DetectFace(gray *gocv.Mat) (detector.FaceRegion, bool, error) {
	faces, err := c.face.DetectFaces(gray)
	if err != nil {
		return detector.FaceRegion{}, false, fmt.Errorf("detect faces: %w", err)
	}
	if len(faces) == 0 {
		return detector.FaceRegion{}, false, nil
	}
	if len(faces) > 1 {
		c.log.WithField("faces", len(faces)).Debug("multiple faces detected")
		if c.config.Rules.RequireSingleFace {
			return detector.FaceRegion{}, false, nil
		}
	}
	if !faces[0].Valid() {
		return detector.FaceRegion{}, false, nil
	}
	return faces[0], true, nil
}

// IsClosedEyes runs both eye detectors over the upper half of face and
// classifies the combined hit count.
func (c *Controller) IsClosedEyes(gray *gocv.Mat, face detector.FaceRegion) (bool, error) {
	band := face.EyeBand()

	left, err := c.leftEye.DetectEyes(gray, band)
	if err != nil {
		return false, fmt.Errorf("detect left eye: %w", err)
	}
	right, err := c.rightEye.DetectEyes(gray, band)
	if err != nil {
		return false, fmt.Errorf("detect right eye: %w", err)
	}

	closed := c.config.Rules.EyesClosed(len(left), len(right))
	c.log.WithFields(logrus.Fields{
		"left_hits":  len(left),
		"right_hits": len(right),
		"closed":     closed,
	}).Trace("eye check")
	return closed, nil
}

// Step evaluates one grayscale frame against the session and returns the
// overlay to draw. While waiting and prompting it polls keys for the start
// key, bounded by StartWait.
func (c *Controller) Step(s *Session, gray *gocv.Mat, keys KeyPoller) (Overlay, error) {
	var ov Overlay
	if s.cancelled {
		return ov, nil
	}

	switch s.state {
	case WaitingForReady:
		armed, err := c.stepWaiting(s, gray, keys, &ov)
		if err != nil || !armed {
			return ov, err
		}
		// The arming frame is evaluated as armed straight away.
		ov = Overlay{}
		return ov, c.stepArmed(s, gray, &ov)

	case Armed:
		return ov, c.stepArmed(s, gray, &ov)

	case Ended:
		ov.Add(ElapsedText(s.ElapsedSeconds(c.now())))
		ov.Add(EndText())
		ov.Final = true
	}

	return ov, nil
}

func (c *Controller) stepWaiting(s *Session, gray *gocv.Mat, keys KeyPoller, ov *Overlay) (bool, error) {
	face, ok, err := c.DetectFace(gray)
	if err != nil || !ok {
		return false, err
	}

	if !c.config.Rules.WithinUsableFaceSize(face.W) {
		c.log.WithField("face_width", face.W).Debug("face outside usable size")
		return false, nil
	}

	closed, err := c.IsClosedEyes(gray, face)
	if err != nil || closed {
		return false, err
	}

	ov.Add(PromptText(c.config.StartKey))

	if keys.PollKey(c.config.StartWait) != c.config.StartKey {
		return false, nil
	}

	now := c.now()
	s.arm(face, now)
	c.log.WithFields(logrus.Fields{
		"session_id": s.ID,
		"face":       face,
	}).Info("session armed")
	c.publish(s, EventArmed, now)

	return true, nil
}

func (c *Controller) stepArmed(s *Session, gray *gocv.Mat, ov *Overlay) error {
	closed, err := c.IsClosedEyes(gray, *s.armedFace)
	if err != nil {
		return err
	}

	now := c.now()
	if !closed {
		s.closedStreak = 0
		ov.Add(ElapsedText(s.ElapsedSeconds(now)))
		return nil
	}

	s.closedStreak++
	if s.closedStreak < c.config.Rules.ClosedFramesRequired {
		ov.Add(ElapsedText(s.ElapsedSeconds(now)))
		return nil
	}

	s.end(now)
	ov.Add(ElapsedText(s.ElapsedSeconds(now)))
	ov.Add(EndText())
	ov.Final = true

	c.log.WithFields(logrus.Fields{
		"session_id":      s.ID,
		"elapsed_seconds": s.ElapsedSeconds(now),
	}).Info("blink detected, session ended")
	c.publish(s, EventEnded, now)

	return nil
}

// CheckCancel polls once for the cancel key and, if pressed before the
// session ended, cancels it. It reports whether the session was cancelled.
func (c *Controller) CheckCancel(s *Session, keys KeyPoller) bool {
	if s.Done() {
		return s.cancelled
	}
	if keys.PollKey(c.config.CancelPoll) != c.config.CancelKey {
		return false
	}

	now := c.now()
	wasArmed := s.state == Armed
	s.cancel(now)
	c.log.WithFields(logrus.Fields{
		"session_id": s.ID,
		"state":      s.state.String(),
	}).Info("session cancelled")
	if wasArmed {
		c.publish(s, EventCancelled, now)
	}
	return true
}

// AwaitDismiss blocks until the cancel key is pressed or ctx is done,
// polling keys every TerminalWait.
func (c *Controller) AwaitDismiss(ctx context.Context, keys KeyPoller) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if keys.PollKey(c.config.TerminalWait) == c.config.CancelKey {
			return nil
		}
	}
}

func (c *Controller) publish(s *Session, t EventType, now time.Time) {
	c.events.Publish(Event{
		Type:           t,
		SessionID:      s.ID,
		State:          s.state.String(),
		ElapsedSeconds: s.ElapsedSeconds(now),
		Timestamp:      now,
	})
}
