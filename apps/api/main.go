package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux

	"github.com/pkg/errors"

	"github.com/trezcool/recomendo/apps/api/di/dig"
	"github.com/trezcool/recomendo/apps/api/echo"
	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/college"
	appfs "github.com/trezcool/recomendo/fs"
	"github.com/trezcool/recomendo/services/ratelimit"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		dbCloser dig_container.DBCloserParam,
		dbLoggerParam dig_container.DBLoggerParam,
		collegeSvc *college.Service,
		limiter *ratelimit.Limiter,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

		core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, apiLogger)

		dbLogger := dbLoggerParam.Logger
		defer func() {
			if err := dbCloser.DB.Close(); err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()
		if limiter != nil {
			defer func() { _ = limiter.Close() }()
		}
		defer apiLogger.Info("Application stopped")

		// a fresh database gets the default college catalog
		if n, err := collegeSvc.Seed(context.Background()); err != nil {
			dbLogger.Error("seeding colleges", errors.Wrap(err, "main"))
		} else if n > 0 {
			dbLogger.Info(fmt.Sprintf("seeded %d colleges", n))
		}

		// =========================================================================
		// Start Debug Service
		//
		// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				apiLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start API Service

		go server.Start()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Error(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					apiLogger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
