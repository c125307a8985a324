package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/voxboard/voxboard/api"
	"github.com/voxboard/voxboard/auth"
	"github.com/voxboard/voxboard/directory"
)

const sweepInterval = 5 * time.Minute

var (
	port           int
	dataDir        string
	secret         string
	allowedOrigins string
	tlsCert        string
	tlsKey         string
	sessionSweep   bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the dashboard backend server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if secret == "" {
			secret = os.Getenv("VOXBOARD_SECRET")
		}
		if secret == "" {
			return errors.New("a pre-shared session secret is required (--secret or VOXBOARD_SECRET)")
		}

		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		dir, err := directory.NewBoltStoreFromFile(dataDir+"/voxboard.db", nil)
		if err != nil {
			return fmt.Errorf("failed to open directory storage: %w", err)
		}
		defer dir.Close()

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
		sessions := auth.NewStore()
		authenticator := auth.NewAuthenticator(
			sessions,
			auth.NewCodec([]byte(secret)),
			&directory.Verifier{Users: dir},
			logger,
		)

		a := api.New(dir, authenticator, api.WithLogger(logger))

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		r.Use(corsHeaders)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		apiRouter := a.Router()
		apiRouter.NotFound(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintln(w, `{"status":"error","info":"Resource not found."}`)
		})
		r.Mount("/", apiRouter)

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		stopSweep := make(chan struct{})
		if sessionSweep {
			// Opt-in: the authorization path only evicts lazily, so without
			// this, sessions that stop being used sit in memory until restart.
			go func() {
				ticker := time.NewTicker(sweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-stopSweep:
						return
					case <-ticker.C:
						if n := sessions.Sweep(); n > 0 {
							logger.Info("swept expired sessions", "count", n)
						}
					}
				}
			}()
		}
		defer close(stopSweep)

		done := make(chan error, 1)
		go func() {
			var err error
			if tlsCert != "" && tlsKey != "" {
				err = server.ListenAndServeTLS(tlsCert, tlsKey)
			} else {
				err = server.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Starting server on port %d (data: %s)...\n", port, dataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

// corsHeaders applies the dashboard's CORS policy and answers preflight
// requests.
func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allowedOrigins)
		h.Set("Access-Control-Allow-Methods", "DELETE, POST, GET, PATCH, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, "+auth.IncomingSessionHeader)
		h.Set("Access-Control-Expose-Headers", fmt.Sprintf("Content-Type, Content-Length, %s, %s",
			auth.OutgoingSessionHeader, auth.OutgoingUserHeader))

		if r.Method == http.MethodOptions {
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			}
			if reqMethod := r.Header.Get("Access-Control-Request-Method"); reqMethod != "" {
				h.Set("Access-Control-Allow-Methods", reqMethod)
			}
			w.Write([]byte("OK"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data")
	serverCmd.Flags().StringVar(&secret, "secret", "", "Pre-shared secret for signing session assertions (or VOXBOARD_SECRET)")
	serverCmd.Flags().StringVar(&allowedOrigins, "allowed-origins", "*", "Allowed origins for CORS")
	serverCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to TLS certificate file")
	serverCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to TLS key file")
	serverCmd.Flags().BoolVar(&sessionSweep, "session-sweep", false, "Periodically evict idle-expired sessions")
}
