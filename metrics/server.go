package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	xlog "github.com/ground-x/xscanner/log"
)

var logger = xlog.NewModuleLogger("metrics")

// Serve runs the /metrics HTTP endpoint until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	logger.Info("metrics endpoint started", "addr", addr)
	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
