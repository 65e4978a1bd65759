// Command riskd runs the alert risk scoring API server.
//
// Configuration is read from riskd.yaml (working directory or /etc/riskd/)
// and RISKD_* environment variables; flags are not used.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/exeosec/riskd/internal/app"
	"github.com/exeosec/riskd/internal/interfaces"
	"github.com/exeosec/riskd/internal/logging"
	"github.com/exeosec/riskd/internal/server"
)

func loadConfig() (server.Config, interfaces.Logger) {
	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("database_path", "riskd.db")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("ml.enabled", false)
	viper.SetDefault("ml.model_path", "")
	viper.SetDefault("ml.library_path", "")
	viper.SetDefault("ml.timeout", "2s")
	viper.SetDefault("rescore_batch_size", 500)
	viper.SetDefault("swagger", true)

	viper.SetEnvPrefix("RISKD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("riskd")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/riskd/")

	logger := logging.NewLogrusLogger(viper.GetString("log_level"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logger.Warn("reading config file", interfaces.Field{Key: "error", Value: err.Error()})
		}
	} else {
		logger.Info("using config file", interfaces.Field{Key: "path", Value: viper.ConfigFileUsed()})
	}
	// Level may have changed once the file was read.
	logger = logging.NewLogrusLogger(viper.GetString("log_level"))

	appCfg := app.DefaultConfig()
	appCfg.DatabasePath = viper.GetString("database_path")
	appCfg.LogLevel = viper.GetString("log_level")
	appCfg.MLEnabled = viper.GetBool("ml.enabled")
	appCfg.MLCfg.ModelPath = viper.GetString("ml.model_path")
	appCfg.MLCfg.LibraryPath = viper.GetString("ml.library_path")
	appCfg.MLTimeout = viper.GetDuration("ml.timeout")
	appCfg.RescoreBatchSize = viper.GetInt("rescore_batch_size")

	return server.Config{
		ListenAddr:    viper.GetString("listen_addr"),
		AppConfig:     appCfg,
		Logger:        logger,
		EnableSwagger: viper.GetBool("swagger"),
	}, logger
}

func main() {
	cfg, logger := loadConfig()

	s, err := server.NewServer(cfg)
	if err != nil {
		logger.Error("starting server", interfaces.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	defer s.Close()

	httpSrv := s.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", interfaces.Field{Key: "addr", Value: cfg.ListenAddr})
		errCh <- httpSrv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server stopped", interfaces.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	case sig := <-stop:
		logger.Info("shutting down", interfaces.Field{Key: "signal", Value: sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", interfaces.Field{Key: "error", Value: err.Error()})
	}
}
