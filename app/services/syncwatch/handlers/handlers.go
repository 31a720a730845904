// Package handlers manages the different versions of the status API.
package handlers

import (
	"net/http"
	"os"

	"go.uber.org/zap"

	v1 "github.com/abumaher/syncwatch/app/services/syncwatch/handlers/v1"
	"github.com/abumaher/syncwatch/foundation/monitor/state"
	"github.com/abumaher/syncwatch/foundation/web"
	"github.com/abumaher/syncwatch/foundation/web/mid"
)

// MuxConfig contains all mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	State    *state.State
}

// PublicMux constructs a http.Handler with all application routes defined.
func PublicMux(cfg MuxConfig) http.Handler {
	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Panics(),
	)

	// Load the v1 routes.
	v1.PublicRoutes(app, v1.Config{
		Log:   cfg.Log,
		State: cfg.State,
	})

	return app
}
