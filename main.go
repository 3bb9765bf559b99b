package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/powgate/cache"
	"github.com/spacemeshos/powgate/config"
	"github.com/spacemeshos/powgate/form"
	"github.com/spacemeshos/powgate/logging"
	"github.com/spacemeshos/powgate/miner"
)

// Powgate binary version.
// It should be passed during the build with '-ldflags "-X main.version="'.
var version = "unknown"

// powgateMain is the true entry point for powgate. This function is required since
// defers created in the top-level scope of a main method aren't executed if
// os.Exit() is called.
func powgateMain() (err error) {
	// Start with a default Config with sane settings
	cfg := config.DefaultConfig()
	// Pre-parse the command line to check for an alternative Config file
	cfg, err = config.ParseFlags(cfg)
	if err != nil {
		return err
	}
	// Load configuration file overwriting defaults with any specified options
	cfg, err = config.ReadConfigFile(cfg)
	if err != nil {
		return err
	}
	cfg, err = config.SetupConfig(cfg)
	if err != nil {
		return err
	}
	// Finally, parse the remaining command line options again to ensure
	// they take precedence.
	cfg, err = config.ParseFlags(cfg)
	if err != nil {
		return err
	}

	// Initialize logging
	logLevel := zap.InfoLevel
	if cfg.DebugLog || cfg.ShowDigests {
		logLevel = zap.DebugLevel
	}
	logger := logging.New(logLevel, cfg.LogFile(), cfg.JSONLog, logging.FileRotation{
		MaxSizeMB:  cfg.MaxLogFileSize,
		MaxBackups: cfg.MaxLogFiles,
	})
	ctx := logging.NewContext(context.Background(), logger)

	defer func() {
		logger.Info("shutdown complete")
	}()

	logger.Sugar().Infof("version: %s, dir: %v, dbdir: %v", version, cfg.PowgateDir, cfg.DbDir)

	store, closeStore, err := cache.Open(cfg.Cache, cfg.DbDir)
	if err != nil {
		return fmt.Errorf("opening proof cache: %w", err)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			err = multierror.Append(err, fmt.Errorf("closing proof cache: %w", cerr))
		}
	}()

	f, err := form.NewHTTP(cfg.Form, nil)
	if err != nil {
		return err
	}

	opts := []miner.OptionFunc{}
	if cfg.ShowDigests {
		opts = append(opts, miner.WithObserver(func(challenge, digest string) {
			logger.Debug("hash", zap.String("challenge", challenge), zap.String("digest", digest))
		}))
	}
	m, err := miner.New(cfg.Miner, cache.NewProofCache(store), f, opts...)
	if err != nil {
		return fmt.Errorf("creating miner: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsPort != nil {
		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", *cfg.MetricsPort),
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		eg.Go(func() error {
			logger.Sugar().Infof("metrics server listening on %s", server.Addr)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	eg.Go(func() error {
		defer cancel()
		results, err := m.AttemptSubmit(ctx, f.PreviousProof(), f.PreviousHash())
		if err != nil {
			return err
		}
		res := <-results
		if res.Err != nil {
			return res.Err
		}
		logger.Info("form submitted",
			zap.String("proof", res.Proof),
			zap.Bool("cached", res.Cached),
			zap.Uint64("attempts", res.Attempts),
		)
		return nil
	})

	return eg.Wait()
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := powgateMain(); err != nil {
		// If it's the flag utility error don't print it,
		// because it was already printed.
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		} else {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
