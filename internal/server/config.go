package server

import (
	"github.com/exeosec/riskd/internal/app"
	"github.com/exeosec/riskd/internal/interfaces"
	"github.com/exeosec/riskd/internal/metrics"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// AppConfig configures the pipeline the server constructs.
	AppConfig *app.Config

	// Logger is optional; a stdout logger is used when nil.
	Logger interfaces.Logger

	// Metrics is optional; a fresh registry with runtime collectors is
	// created when nil.
	Metrics *metrics.Metrics

	// EnableSwagger mounts the interactive API documentation at /swagger/.
	EnableSwagger bool
}
