package detector

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"gocv.io/x/gocv"
)

// Cascade model file names expected in the cascade directory.
// The left and right eye models are swapped on purpose: the camera image
// is mirrored, so the player's visually-left eye matches the right-eye model.
const (
	FaceCascadeFile     = "haarcascade_frontalface_alt2.xml"
	LeftEyeCascadeFile  = "haarcascade_righteye_2splits.xml"
	RightEyeCascadeFile = "haarcascade_lefteye_2splits.xml"
)

// ErrCascadeLoad is returned when a classifier model cannot be loaded.
var ErrCascadeLoad = errors.New("failed to load cascade")

// HaarDetector runs a single Haar cascade with fixed parameters.
// It satisfies both FaceDetector and EyeDetector.
type HaarDetector struct {
	classifier gocv.CascadeClassifier
	params     Params
	path       string
}

// NewHaarDetector loads the cascade model at path.
func NewHaarDetector(path string, params Params) (*HaarDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("%w: %s", ErrCascadeLoad, path)
	}

	return &HaarDetector{
		classifier: classifier,
		params:     params,
		path:       path,
	}, nil
}

// DetectFaces runs the cascade over the whole frame.
func (d *HaarDetector) DetectFaces(gray *gocv.Mat) ([]FaceRegion, error) {
	if gray == nil || gray.Empty() {
		return nil, nil
	}

	rects := d.detect(*gray)
	faces := make([]FaceRegion, 0, len(rects))
	for _, r := range rects {
		faces = append(faces, RegionFromRect(r))
	}
	return faces, nil
}

// DetectEyes runs the cascade over band, clipped to the frame.
func (d *HaarDetector) DetectEyes(gray *gocv.Mat, band image.Rectangle) ([]image.Rectangle, error) {
	if gray == nil || gray.Empty() {
		return nil, nil
	}

	band = band.Intersect(image.Rect(0, 0, gray.Cols(), gray.Rows()))
	if band.Empty() {
		return nil, nil
	}

	crop := gray.Region(band)
	defer crop.Close()

	return d.detect(crop), nil
}

func (d *HaarDetector) detect(img gocv.Mat) []image.Rectangle {
	minSize := image.Pt(d.params.MinSize, d.params.MinSize)
	return d.classifier.DetectMultiScaleWithParams(
		img,
		d.params.ScaleFactor,
		d.params.MinNeighbors,
		0,
		minSize,
		image.Point{},
	)
}

// Close releases the classifier.
func (d *HaarDetector) Close() error {
	return d.classifier.Close()
}

// Cascades holds the three classifiers the game needs.
type Cascades struct {
	Face     *HaarDetector
	LeftEye  *HaarDetector
	RightEye *HaarDetector
}

// LoadCascades loads the face and both eye models from dir.
func LoadCascades(dir string, face, eye Params) (*Cascades, error) {
	c := &Cascades{}

	var err error
	if c.Face, err = NewHaarDetector(filepath.Join(dir, FaceCascadeFile), face); err != nil {
		return nil, err
	}
	if c.LeftEye, err = NewHaarDetector(filepath.Join(dir, LeftEyeCascadeFile), eye); err != nil {
		c.Close()
		return nil, err
	}
	if c.RightEye, err = NewHaarDetector(filepath.Join(dir, RightEyeCascadeFile), eye); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// Close releases every loaded classifier.
func (c *Cascades) Close() error {
	var errs []error
	for _, d := range []*HaarDetector{c.Face, c.LeftEye, c.RightEye} {
		if d != nil {
			errs = append(errs, d.Close())
		}
	}
	return errors.Join(errs...)
}
