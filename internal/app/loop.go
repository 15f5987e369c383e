package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ayusman/blinkgame/internal/display"
	"github.com/ayusman/blinkgame/internal/game"
	"gocv.io/x/gocv"
)

// loop is the per-frame cycle:
// 1. Read a color frame (any failure is fatal to the session)
// 2. Convert to grayscale for detection
// 3. Advance the session through the controller
// 4. Draw the overlay onto the color frame and show it
// 5. Stop on the final frame, otherwise poll the cancel key
// 6. Wait for the pacer
func (a *App) loop(ctx context.Context, s *game.Session) error {
	for n := 0; !s.Done(); n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frameStart := time.Now()
		frame, err := a.camera.ReadFrame()
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}

		err = a.processFrame(s, frame, frameStart)
		frame.Close()
		if err != nil {
			return err
		}

		if s.Done() {
			break
		}
		if a.controller.CheckCancel(s, a.display) {
			break
		}

		if err := a.pacer.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) processFrame(s *game.Session, frame *gocv.Mat, frameStart time.Time) error {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)

	ov, err := a.controller.Step(s, &gray, a.display)
	if err != nil {
		return err
	}

	if a.config.ShowFPS && s.State() != game.WaitingForReady {
		if d := time.Since(frameStart); d > 0 {
			ov.Add(game.FPSText(int(time.Second/d), frame.Cols()))
		}
	}

	display.DrawOverlay(frame, ov)
	a.display.Show(frame)
	return nil
}
