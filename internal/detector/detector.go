// Package detector wraps the face and eye classifiers the game treats as
// black boxes: a grayscale image goes in, rectangles come out.
package detector

import (
	"image"

	"gocv.io/x/gocv"
)

// FaceRegion is a detected face in frame pixel coordinates.
type FaceRegion struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// RegionFromRect converts a detector rectangle to a FaceRegion.
func RegionFromRect(r image.Rectangle) FaceRegion {
	return FaceRegion{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Rect returns the region as an image.Rectangle.
func (f FaceRegion) Rect() image.Rectangle {
	return image.Rect(f.X, f.Y, f.X+f.W, f.Y+f.H)
}

// Valid reports whether the region has a positive area.
func (f FaceRegion) Valid() bool {
	return f.W > 0 && f.H > 0
}

// EyeBand returns the part of the face searched for eyes: the full face
// width and the upper half of its height, starting at the face's top edge.
func (f FaceRegion) EyeBand() image.Rectangle {
	return image.Rect(f.X, f.Y, f.X+f.W, f.Y+f.H/2)
}

// Params are the multi-scale detection parameters of a cascade.
type Params struct {
	ScaleFactor  float64
	MinNeighbors int
	// MinSize is the side of the smallest square window considered.
	MinSize int
}

// DefaultFaceParams returns the face detection parameters.
func DefaultFaceParams() Params {
	return Params{ScaleFactor: 1.11, MinNeighbors: 3, MinSize: 100}
}

// DefaultEyeParams returns the eye detection parameters.
func DefaultEyeParams() Params {
	return Params{ScaleFactor: 1.11, MinNeighbors: 3, MinSize: 8}
}

// FaceDetector finds faces in a grayscale frame.
type FaceDetector interface {
	// DetectFaces returns every face found, in the classifier's order.
	// Returns an empty slice if no faces are detected.
	DetectFaces(gray *gocv.Mat) ([]FaceRegion, error)

	// Close releases any resources held by the detector.
	Close() error
}

// EyeDetector finds eyes inside a band of a grayscale frame.
type EyeDetector interface {
	// DetectEyes returns the eye hits inside band, relative to the band.
	DetectEyes(gray *gocv.Mat, band image.Rectangle) ([]image.Rectangle, error)

	// Close releases any resources held by the detector.
	Close() error
}
