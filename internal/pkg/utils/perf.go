package utils

import (
	"fmt"
	"net/http"

	"github.com/airenas/go-app/pkg/goapp"

	_ "net/http/pprof"
)

// RunPerfEndpoint starts the pprof http listener when debug.port is
// configured. Meant to run in its own goroutine, errors are logged only.
func RunPerfEndpoint() {
	port := goapp.Config.GetInt("debug.port")
	if port <= 0 {
		goapp.Log.Info().Msg("no debug.port configured - skip pprof endpoint")
		return
	}
	goapp.Log.Info().Int("port", port).Msg("starting pprof endpoint")
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil); err != nil {
		goapp.Log.Error().Err(err).Msg("can't serve pprof endpoint")
	}
}
