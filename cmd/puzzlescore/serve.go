package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/puzzlescore/internal/api"
)

var (
	serveAddr     string
	serveAdminKey string
	serveRate     float64
	serveBurst    int
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoreboard JSON API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveAdminKey, "admin-key", "", "X-API-Key value that grants admin access (default $PUZZLESCORE_ADMIN_KEY)")
	cmd.Flags().Float64Var(&serveRate, "rate", api.DefaultRate, "write requests per second per client IP")
	cmd.Flags().IntVar(&serveBurst, "burst", api.DefaultBurst, "write burst per client IP")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	server := a.fileCfg.Server
	applyStringConfig(cmd, "addr", &serveAddr, server.Addr)
	applyStringConfig(cmd, "admin-key", &serveAdminKey, server.AdminKey)
	applyFloatConfig(cmd, "rate", &serveRate, server.Rate)
	applyIntConfig(cmd, "burst", &serveBurst, server.Burst)
	if serveAdminKey == "" {
		serveAdminKey = os.Getenv("PUZZLESCORE_ADMIN_KEY")
	}
	if serveRate <= 0 || serveBurst <= 0 {
		return fmt.Errorf("--rate and --burst must be > 0")
	}
	if serveAdminKey == "" {
		logErrln("No admin key configured; the API is read-only.")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.New(a.service, api.Options{
		AdminKey: serveAdminKey,
		Rate:     serveRate,
		Burst:    serveBurst,
		Metrics:  a.metrics,
		Logger:   a.logger,
	})
	return srv.Run(ctx, serveAddr)
}
