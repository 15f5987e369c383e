package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ayusman/blinkgame/internal/app"
	"github.com/ayusman/blinkgame/internal/capture"
	"github.com/ayusman/blinkgame/internal/config"
	"github.com/ayusman/blinkgame/internal/detector"
	"github.com/ayusman/blinkgame/internal/display"
	"github.com/ayusman/blinkgame/internal/game"
	"github.com/ayusman/blinkgame/internal/logging"
	"github.com/ayusman/blinkgame/internal/notify"
	"github.com/ayusman/blinkgame/internal/server"
	"github.com/ayusman/blinkgame/internal/store"
	"github.com/sirupsen/logrus"
)

// HighGUI must be driven from the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	envFile := flag.String("env", ".env", "dotenv file with BLINK_* settings")
	httpAddr := flag.String("http", "", "results server address (empty disables it)")
	dbPath := flag.String("db", "", "SQLite file for session results (empty disables recording)")
	showFPS := flag.Bool("fps", false, "draw the frame rate while armed")
	logLevel := flag.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "http":
			cfg.HTTPAddr = *httpAddr
		case "db":
			cfg.DBPath = *dbPath
		case "fps":
			cfg.ShowFPS = *showFPS
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	log, logCloser, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return 1
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cascades, err := detector.LoadCascades(cfg.CascadeDir,
		detector.Params{ScaleFactor: cfg.FaceScaleFactor, MinNeighbors: cfg.FaceMinNeighbors, MinSize: cfg.FaceMinSize},
		detector.Params{ScaleFactor: cfg.EyeScaleFactor, MinNeighbors: cfg.EyeMinNeighbors, MinSize: cfg.EyeMinSize},
	)
	if err != nil {
		log.WithError(err).Error("failed to load classifiers")
		return 1
	}
	defer cascades.Close()

	ctrl := game.NewController(controllerConfig(cfg), cascades.Face, cascades.LeftEye, cascades.RightEye, log)

	var st *store.Store
	if cfg.DBPath != "" {
		if st, err = store.New(cfg.DBPath); err != nil {
			log.WithError(err).Error("failed to open results store")
			return 1
		}
		defer st.Close()
		log.WithField("path", cfg.DBPath).Info("recording sessions")
	}

	var publishers game.Publishers
	if cfg.MQTTBroker != "" {
		mq, err := notify.DialMQTT(notify.MQTTConfig{
			Broker: cfg.MQTTBroker,
			Topic:  cfg.MQTTTopic,
			QoS:    byte(cfg.MQTTQoS),
		}, log)
		if err != nil {
			log.WithError(err).Error("failed to connect to MQTT broker")
			return 1
		}
		defer mq.Close()
		publishers = append(publishers, mq)
	}

	serverDone := make(chan struct{})
	serverCtx, stopServer := context.WithCancel(ctx)
	if cfg.HTTPAddr != "" {
		hub := server.NewEventHub(log)
		go hub.Run(serverCtx)
		publishers = append(publishers, hub)

		srv := server.New(server.Config{Store: st, Events: hub, Logger: log})
		go func() {
			defer close(serverDone)
			if err := srv.ListenAndServe(serverCtx, cfg.HTTPAddr); err != nil {
				log.WithError(err).Error("results server failed")
			}
		}()
	} else {
		close(serverDone)
	}
	defer func() {
		stopServer()
		<-serverDone
	}()
	ctrl.SetPublisher(publishers)

	a := app.New(
		app.Config{FrameInterval: cfg.FrameInterval, ShowFPS: cfg.ShowFPS},
		capture.NewCamera(cfg.CameraID, cfg.FrameWidth, cfg.FrameHeight),
		display.NewWindow(cfg.WindowTitle),
		ctrl,
		log,
	)
	a.SetStore(st)

	s, err := a.Run(ctx)
	if errors.Is(err, capture.ErrCameraUnavailable) {
		fmt.Println("Can not open camera")
		return 1
	}
	if err != nil {
		log.WithError(err).Error("game stopped")
		return 1
	}

	end, _ := s.EndedAt()
	log.WithFields(logrus.Fields{
		"session_id": s.ID,
		"state":      s.State().String(),
		"cancelled":  s.Cancelled(),
		"elapsed":    s.ElapsedSeconds(end),
	}).Info("game over")
	return 0
}

func controllerConfig(cfg config.Config) game.Config {
	return game.Config{
		Rules: game.Rules{
			FaceSize:             game.FaceSizeRange{Min: cfg.FaceMinWidth, Max: cfg.FaceMaxWidth},
			ClosedEyeMaxHits:     cfg.ClosedEyeMaxHits,
			ClosedFramesRequired: cfg.ClosedFramesRequired,
			RequireSingleFace:    cfg.RequireSingleFace,
		},
		StartKey:     cfg.StartKey,
		CancelKey:    cfg.CancelKey,
		StartWait:    cfg.StartWait,
		CancelPoll:   cfg.CancelPoll,
		TerminalWait: cfg.TerminalWait,
	}
}
