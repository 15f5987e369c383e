// Package game holds the blink game's per-frame decision logic: the face
// and eye acceptance rules and the state machine that arms the timer and
// ends it on a blink.
package game

import (
	"time"

	"github.com/ayusman/blinkgame/internal/detector"
	"github.com/google/uuid"
)

// State is the phase of a game session.
type State int

const (
	// WaitingForReady waits for a usable face with open eyes and the start key.
	WaitingForReady State = iota
	// Armed means the timer is running and a blink ends the game.
	Armed
	// Ended is terminal: a blink was detected after arming.
	Ended
)

// String returns the state name used in logs and events.
func (s State) String() string {
	switch s {
	case WaitingForReady:
		return "waiting"
	case Armed:
		return "armed"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Session is the mutable state of one game, owned by the frame loop and
// advanced only by Controller.
type Session struct {
	ID string

	state     State
	startedAt time.Time
	endedAt   time.Time
	cancelled bool

	// armedFace is frozen at arming time and never re-detected while armed.
	armedFace *detector.FaceRegion
	// closedStreak counts consecutive closed-eye verdicts while armed.
	closedStreak int
}

// NewSession returns a session in WaitingForReady.
func NewSession() *Session {
	return &Session{
		ID:    uuid.NewString(),
		state: WaitingForReady,
	}
}

// State returns the current phase.
func (s *Session) State() State {
	return s.state
}

// StartedAt returns the arming time; ok is false before arming.
func (s *Session) StartedAt() (t time.Time, ok bool) {
	if s.state == WaitingForReady {
		return time.Time{}, false
	}
	return s.startedAt, true
}

// EndedAt returns when the session ended or was cancelled after arming.
func (s *Session) EndedAt() (t time.Time, ok bool) {
	return s.endedAt, !s.endedAt.IsZero()
}

// ArmedFace returns the face region captured when the session was armed.
func (s *Session) ArmedFace() (detector.FaceRegion, bool) {
	if s.armedFace == nil {
		return detector.FaceRegion{}, false
	}
	return *s.armedFace, true
}

// Cancelled reports whether the cancel key interrupted the session.
func (s *Session) Cancelled() bool {
	return s.cancelled
}

// Done reports whether the frame loop should stop.
func (s *Session) Done() bool {
	return s.cancelled || s.state == Ended
}

// ElapsedSeconds returns whole seconds since arming, computed from
// truncated Unix seconds. It is zero before arming.
func (s *Session) ElapsedSeconds(now time.Time) int64 {
	if s.state == WaitingForReady {
		return 0
	}
	if s.state == Ended || s.cancelled {
		now = s.endedAt
	}
	return now.Unix() - s.startedAt.Unix()
}

func (s *Session) arm(face detector.FaceRegion, now time.Time) {
	s.state = Armed
	s.startedAt = now
	s.armedFace = &face
	s.closedStreak = 0
}

func (s *Session) end(now time.Time) {
	s.state = Ended
	s.endedAt = now
}

func (s *Session) cancel(now time.Time) {
	s.cancelled = true
	if s.state == Armed {
		s.endedAt = now
	}
}
