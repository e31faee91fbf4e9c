package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/nxncube"
	"github.com/SeamusWaldron/nxncube/internal/logging"
	"github.com/SeamusWaldron/nxncube/internal/recorder"
	"github.com/SeamusWaldron/nxncube/internal/transport/ws"
)

var (
	serveAddr     string
	serveTickRate int
	serveRecord   bool
	serveNotes    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a session to an external renderer over websocket",
	Long: `Start a session and stream cubie poses over a websocket at /ws.

The renderer sends pointer input (with its own pick results) and move
commands back; the server ticks the session and broadcasts a FRAME whenever
cubies may have moved and an EVENT for every engine event.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().IntVar(&serveTickRate, "tick-rate", 60, "Ticks per second")
	serveCmd.Flags().BoolVar(&serveRecord, "record", true, "Record the session to the database")
	serveCmd.Flags().StringVar(&serveNotes, "notes", "", "Notes for this session")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr == "" {
		serveAddr = settings.ServeAddr
	}
	if serveTickRate <= 0 {
		return fmt.Errorf("tick rate must be positive")
	}
	dt := time.Second / time.Duration(serveTickRate)

	log := newLogger()

	sess, err := nxncube.NewSession(sessionOptions(logging.Component(log, "engine"))...)
	if err != nil {
		return err
	}
	defer sess.Close()

	if serveRecord {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stateFile, err := openStateFile()
		if err != nil {
			return err
		}

		rec := recorder.NewSession(db, stateFile, logging.Component(log, "recorder"))
		if _, err := rec.Start(sess.Engine(), sess.ID(), serveNotes, version); err != nil {
			return fmt.Errorf("failed to start recording: %w", err)
		}
		defer func() {
			if err := rec.End(); err != nil {
				log.Error().Err(err).Msg("failed to end recording")
			}
		}()
	}

	if err := sess.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := ws.NewServer(logging.Component(log, "ws"))
	mux := http.NewServeMux()
	mux.Handle("/ws", srv.Handler())

	httpSrv := &http.Server{
		Addr:              serveAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", serveAddr).Str("session", sess.ID()).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		stop()
	}()

	runErr := srv.Run(ctx, sess, dt)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	default:
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	log.Info().Int("moves", len(sess.Moves())).Bool("solved", sess.IsSolved()).Msg("session closed")
	return nil
}
