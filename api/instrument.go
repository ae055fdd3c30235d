package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"taskboard/notify"
)

const metricsNamespace = "taskboard"

// Instrument records per-route request metrics into reg and serves them at
// /metrics. When hub is set the number of running unread count pollers is
// exported as well.
func Instrument(e *echo.Echo, reg *prometheus.Registry, hub *notify.Hub) error {
	mw, err := echoprometheus.MiddlewareConfig{
		Namespace:  metricsNamespace,
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/healthz"
		},
	}.ToMiddleware()
	if err != nil {
		return err
	}
	e.Use(mw)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))

	if hub == nil {
		return nil
	}
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "unread_pollers",
		Help:      "Number of viewers with an open unread count stream.",
	}, func() float64 {
		return float64(hub.Active())
	}))
}
