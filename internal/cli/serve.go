package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/greenlens/internal/pipeline"
	"github.com/ppiankov/greenlens/internal/server"
	"github.com/ppiankov/greenlens/internal/store"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Long: `Serve exposes the analysis pipeline over HTTP:

  POST /v1/analyze/text    {"text": "..."}
  POST /v1/analyze/image   multipart field "image"
  GET  /v1/reports/{id}    stored report (requires storage.backend)
  GET  /healthz`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	st, err := store.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	if st != nil {
		defer func() { _ = st.Close() }()
	}

	srv := server.New(p, st, cfg.Server)
	srv.SetLogger(logf)

	fmt.Fprintf(os.Stderr, "Listening on %s\n", cfg.Server.Addr)
	return srv.Run(ctx)
}
