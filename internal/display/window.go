// Package display draws game overlays onto frames and presents them in a
// HighGUI window, which also serves as the keyboard source.
package display

import (
	"image/color"
	"time"

	"github.com/ayusman/blinkgame/internal/game"
	"gocv.io/x/gocv"
)

// TextColor is the overlay color (green in BGR order).
var TextColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

// DrawOverlay renders every overlay text onto frame.
func DrawOverlay(frame *gocv.Mat, ov game.Overlay) {
	for _, t := range ov.Texts {
		gocv.PutTextWithParams(
			frame,
			t.Content,
			t.Origin,
			gocv.FontHersheyPlain,
			t.Scale,
			TextColor,
			t.Thickness,
			gocv.LineAA,
			false,
		)
	}
}

// Window is a single on-screen window. The HighGUI window is created on
// the first Show.
type Window struct {
	title  string
	window *gocv.Window
}

// NewWindow returns a window with the given title.
func NewWindow(title string) *Window {
	return &Window{title: title}
}

// Show presents frame. The window repaints on the next PollKey.
func (w *Window) Show(frame *gocv.Mat) {
	if w.window == nil {
		w.window = gocv.NewWindow(w.title)
	}
	w.window.IMShow(*frame)
}

// PollKey waits up to wait for a key press and returns its code, or
// game.NoKey. HighGUI treats a zero delay as "forever", so waits shorter
// than a millisecond are rounded up to one.
func (w *Window) PollKey(wait time.Duration) int {
	if w.window == nil {
		time.Sleep(wait)
		return game.NoKey
	}
	ms := int(wait / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	key := w.window.WaitKey(ms)
	if key < 0 {
		return game.NoKey
	}
	return key
}

// Close destroys the window if it was ever shown.
func (w *Window) Close() error {
	if w.window == nil {
		return nil
	}
	err := w.window.Close()
	w.window = nil
	return err
}
