package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"httpbridge-core/internal/bridge"
	"httpbridge-core/internal/core/log"
	"httpbridge-core/internal/inspect"
)

var (
	serveListen string
	serveConfig string
)

// serveFileConfig is the optional yaml config for the serve command.
type serveFileConfig struct {
	Listen string     `yaml:"listen"`
	Log    log.Config `yaml:"log"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the blob inspection HTTP service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", ":8089", "Listen address")
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "Config file path")
}

func runServe(cmd *cobra.Command, args []string) error {
	listen := serveListen
	if serveConfig != "" {
		data, err := os.ReadFile(serveConfig)
		if err != nil {
			return err
		}
		var cfg serveFileConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return err
		}
		if cfg.Listen != "" {
			listen = cfg.Listen
		}
		if cfg.Log != (log.Config{}) {
			if err := log.Configure(cfg.Log); err != nil {
				return err
			}
		}
	}

	builder := bridge.NewRequestBuilder(bridge.NewLocalRuntime())
	service := inspect.NewService(builder)

	server := &http.Server{
		Addr:              listen,
		Handler:           service.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("inspection service listening on %s", listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
