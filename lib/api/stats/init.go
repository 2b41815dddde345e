package stats

import (
	"github.com/ether/articlestore/lib"
	"github.com/gofiber/adaptor/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Init(store *lib.InitStore) {
	checks := []Checker{
		DBChecker{store.Store},
	}

	store.C.Get("/health", Handler(
		store.RetrievedSettings.GitVersion,
		"articlestore-api",
		checks,
	))

	if store.RetrievedSettings.EnableMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		if store.Metrics != nil {
			reg.MustRegister(store.Metrics.Collectors()...)
		}
		handler := promhttp.HandlerFor(
			reg,
			promhttp.HandlerOpts{},
		)
		store.C.Get("/metrics", adaptor.HTTPHandler(handler))
	}
}
