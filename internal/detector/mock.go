package detector

import (
	"image"

	"gocv.io/x/gocv"
)

// MockFaceDetector is a test implementation of FaceDetector.
// It allows tests to control the detection results.
type MockFaceDetector struct {
	faces []FaceRegion
	err   error
	calls int
}

// NewMockFaceDetector creates a new MockFaceDetector instance.
func NewMockFaceDetector() *MockFaceDetector {
	return &MockFaceDetector{}
}

// SetFaces sets the faces that will be returned by DetectFaces.
func (m *MockFaceDetector) SetFaces(faces ...FaceRegion) {
	m.faces = faces
}

// SetError sets the error that will be returned by DetectFaces.
func (m *MockFaceDetector) SetError(err error) {
	m.err = err
}

// Calls reports how many times DetectFaces ran.
func (m *MockFaceDetector) Calls() int {
	return m.calls
}

// DetectFaces returns the pre-configured faces or error.
func (m *MockFaceDetector) DetectFaces(gray *gocv.Mat) ([]FaceRegion, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.faces, nil
}

// Close is a no-op for the mock detector.
func (m *MockFaceDetector) Close() error {
	return nil
}

// MockEyeDetector is a test implementation of EyeDetector returning a
// synthetic number of hits.
type MockEyeDetector struct {
	hits     int
	err      error
	calls    int
	lastBand image.Rectangle
}

// NewMockEyeDetector creates a MockEyeDetector reporting hits eyes.
func NewMockEyeDetector(hits int) *MockEyeDetector {
	return &MockEyeDetector{hits: hits}
}

// SetHits sets how many eye rectangles DetectEyes returns.
func (m *MockEyeDetector) SetHits(hits int) {
	m.hits = hits
}

// SetError sets the error that will be returned by DetectEyes.
func (m *MockEyeDetector) SetError(err error) {
	m.err = err
}

// Calls reports how many times DetectEyes ran.
func (m *MockEyeDetector) Calls() int {
	return m.calls
}

// LastBand returns the band passed to the most recent DetectEyes call.
func (m *MockEyeDetector) LastBand() image.Rectangle {
	return m.lastBand
}

// DetectEyes returns hits adjacent 10x10 rectangles.
func (m *MockEyeDetector) DetectEyes(gray *gocv.Mat, band image.Rectangle) ([]image.Rectangle, error) {
	m.calls++
	m.lastBand = band
	if m.err != nil {
		return nil, m.err
	}
	rects := make([]image.Rectangle, m.hits)
	for i := range rects {
		rects[i] = image.Rect(i*10, 0, i*10+10, 10)
	}
	return rects, nil
}

// Close is a no-op for the mock detector.
func (m *MockEyeDetector) Close() error {
	return nil
}
