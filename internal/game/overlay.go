package game

import (
	"fmt"
	"image"
)

// Text is one line of overlay drawn onto the color frame.
type Text struct {
	Content   string
	Origin    image.Point
	Scale     float64
	Thickness int
}

// Overlay is what the renderer must draw for a frame.
type Overlay struct {
	Texts []Text
	// Final marks the last frame of the session, shown until dismissed.
	Final bool
}

// Add appends a text line.
func (o *Overlay) Add(t Text) {
	o.Texts = append(o.Texts, t)
}

// Default text placement.
var (
	MainOrigin = image.Pt(10, 50)
	EndOrigin  = image.Pt(10, 100)
)

const (
	mainScale     = 3
	mainThickness = 3
	fpsScale      = 2
	fpsThickness  = 2
	fpsRightInset = 150
	fpsTop        = 40
)

// PromptText asks the player to press the start key.
func PromptText(startKey int) Text {
	return Text{
		Content:   fmt.Sprintf("Please press \"%c\"", rune(startKey)),
		Origin:    MainOrigin,
		Scale:     mainScale,
		Thickness: mainThickness,
	}
}

// ElapsedText shows whole seconds since arming.
func ElapsedText(seconds int64) Text {
	return Text{
		Content:   fmt.Sprintf("%d", seconds),
		Origin:    MainOrigin,
		Scale:     mainScale,
		Thickness: mainThickness,
	}
}

// EndText marks the final frame.
func EndText() Text {
	return Text{
		Content:   "End",
		Origin:    EndOrigin,
		Scale:     mainScale,
		Thickness: mainThickness,
	}
}

// FPSText shows the frame rate near the top-right corner of a frame of the given width.
func FPSText(fps int, frameWidth int) Text {
	return Text{
		Content:   fmt.Sprintf("FPS : %d", fps),
		Origin:    image.Pt(frameWidth-fpsRightInset, fpsTop),
		Scale:     fpsScale,
		Thickness: fpsThickness,
	}
}
