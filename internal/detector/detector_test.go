package detector

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func TestFaceRegion_RectRoundTrip(t *testing.T) {
	r := image.Rect(100, 50, 300, 260)
	f := RegionFromRect(r)

	want := FaceRegion{X: 100, Y: 50, W: 200, H: 210}
	if f != want {
		t.Fatalf("RegionFromRect() = %+v, want %+v", f, want)
	}
	if f.Rect() != r {
		t.Errorf("Rect() = %v, want %v", f.Rect(), r)
	}
}

func TestFaceRegion_Valid(t *testing.T) {
	tests := []struct {
		name string
		f    FaceRegion
		want bool
	}{
		{"positive", FaceRegion{W: 1, H: 1}, true},
		{"zero width", FaceRegion{W: 0, H: 10}, false},
		{"zero height", FaceRegion{W: 10, H: 0}, false},
		{"zero value", FaceRegion{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFaceRegion_EyeBand(t *testing.T) {
	tests := []struct {
		name string
		f    FaceRegion
		want image.Rectangle
	}{
		{
			name: "even height",
			f:    FaceRegion{X: 200, Y: 100, W: 200, H: 200},
			want: image.Rect(200, 100, 400, 200),
		},
		{
			name: "odd height truncates",
			f:    FaceRegion{X: 10, Y: 20, W: 181, H: 181},
			want: image.Rect(10, 20, 191, 110),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.EyeBand(); got != tt.want {
				t.Errorf("EyeBand() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultParams(t *testing.T) {
	face := DefaultFaceParams()
	if face.ScaleFactor != 1.11 || face.MinNeighbors != 3 || face.MinSize != 100 {
		t.Errorf("DefaultFaceParams() = %+v", face)
	}

	eye := DefaultEyeParams()
	if eye.ScaleFactor != 1.11 || eye.MinNeighbors != 3 || eye.MinSize != 8 {
		t.Errorf("DefaultEyeParams() = %+v", eye)
	}
}

func TestMockFaceDetector(t *testing.T) {
	t.Run("returns no faces by default", func(t *testing.T) {
		mock := NewMockFaceDetector()

		faces, err := mock.DetectFaces(nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(faces) != 0 {
			t.Errorf("expected no faces, got %v", faces)
		}
	})

	t.Run("returns configured faces in order", func(t *testing.T) {
		mock := NewMockFaceDetector()
		first := FaceRegion{X: 1, Y: 2, W: 200, H: 200}
		second := FaceRegion{X: 300, Y: 2, W: 150, H: 150}
		mock.SetFaces(first, second)

		faces, err := mock.DetectFaces(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(faces) != 2 || faces[0] != first || faces[1] != second {
			t.Errorf("DetectFaces() = %v", faces)
		}
		if mock.Calls() != 1 {
			t.Errorf("Calls() = %d, want 1", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockFaceDetector()
		wantErr := errors.New("boom")
		mock.SetError(wantErr)

		if _, err := mock.DetectFaces(nil); !errors.Is(err, wantErr) {
			t.Errorf("DetectFaces() error = %v, want %v", err, wantErr)
		}
	})
}

func TestMockEyeDetector(t *testing.T) {
	mock := NewMockEyeDetector(3)
	band := image.Rect(0, 0, 200, 100)

	eyes, err := mock.DetectEyes(nil, band)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eyes) != 3 {
		t.Errorf("len(eyes) = %d, want 3", len(eyes))
	}
	if mock.LastBand() != band {
		t.Errorf("LastBand() = %v, want %v", mock.LastBand(), band)
	}

	mock.SetHits(0)
	eyes, _ = mock.DetectEyes(nil, band)
	if len(eyes) != 0 {
		t.Errorf("len(eyes) = %d, want 0", len(eyes))
	}
}

func TestNewHaarDetector_MissingModel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires OpenCV")
	}

	_, err := NewHaarDetector(filepath.Join(t.TempDir(), "missing.xml"), DefaultFaceParams())
	if !errors.Is(err, ErrCascadeLoad) {
		t.Errorf("NewHaarDetector() error = %v, want ErrCascadeLoad", err)
	}
}

func TestLoadCascades_MissingDir(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires OpenCV")
	}

	_, err := LoadCascades(t.TempDir(), DefaultFaceParams(), DefaultEyeParams())
	if !errors.Is(err, ErrCascadeLoad) {
		t.Errorf("LoadCascades() error = %v, want ErrCascadeLoad", err)
	}
}

func TestHaarDetector_BlankFrame_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cascades, err := LoadCascades("../../haarcascades", DefaultFaceParams(), DefaultEyeParams())
	if err != nil {
		t.Skipf("skipping test - cascades not available: %v", err)
	}
	defer cascades.Close()

	gray := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC1)
	defer gray.Close()

	faces, err := cascades.Face.DetectFaces(&gray)
	if err != nil {
		t.Fatalf("DetectFaces() error = %v", err)
	}
	if len(faces) != 0 {
		t.Errorf("blank frame produced %d faces", len(faces))
	}

	// A band partly outside the frame is clipped rather than rejected.
	eyes, err := cascades.LeftEye.DetectEyes(&gray, image.Rect(600, 400, 800, 600))
	if err != nil {
		t.Fatalf("DetectEyes() error = %v", err)
	}
	if len(eyes) != 0 {
		t.Errorf("blank band produced %d eyes", len(eyes))
	}

	// A band fully outside the frame yields nothing.
	eyes, err = cascades.RightEye.DetectEyes(&gray, image.Rect(1000, 1000, 1100, 1100))
	if err != nil || eyes != nil {
		t.Errorf("DetectEyes() outside frame = %v, %v; want nil, nil", eyes, err)
	}
}
