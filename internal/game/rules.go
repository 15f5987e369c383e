package game

// FaceSizeRange is the inclusive band of face widths, in pixels, at which
// the player sits at a workable distance from the camera.
type FaceSizeRange struct {
	Min int
	Max int
}

// Contains reports whether width lies in the band, bounds included.
func (r FaceSizeRange) Contains(width int) bool {
	return r.Min <= width && width <= r.Max
}

// Rules are the acceptance heuristics applied to raw detector output.
type Rules struct {
	FaceSize FaceSizeRange
	// ClosedEyeMaxHits is the largest combined left+right eye hit count
	// that still reads as closed.
	ClosedEyeMaxHits int
	// ClosedFramesRequired consecutive closed verdicts end an armed game.
	ClosedFramesRequired int
	// RequireSingleFace treats frames with several faces as faceless.
	RequireSingleFace bool
}

// DefaultRules returns the rules tuned for a 640x480 capture.
func DefaultRules() Rules {
	return Rules{
		FaceSize:             FaceSizeRange{Min: 180, Max: 240},
		ClosedEyeMaxHits:     2,
		ClosedFramesRequired: 1,
	}
}

// WithinUsableFaceSize reports whether a face of this width is usable.
func (r Rules) WithinUsableFaceSize(width int) bool {
	return r.FaceSize.Contains(width)
}

// EyesClosed classifies the eye hit counts of the two detectors.
// An open eye usually yields at least one hit from one of the models, so a
// combined count at or below the threshold means at most one eye was weakly
// seen. It cannot tell "no face in the band" from "eyes closed".
func (r Rules) EyesClosed(leftHits, rightHits int) bool {
	return leftHits+rightHits <= r.ClosedEyeMaxHits
}
