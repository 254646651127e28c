package http

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// RouterConfig collects the handlers and the middleware chain. Middleware
// wraps the whole router, first entry outermost.
type RouterConfig struct {
	Sessions   *SessionHandler
	Votes      *VoteHandler
	Admin      *AdminHandler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the API route table.
func NewRouter(cfg RouterConfig) http.Handler {
	router := httprouter.New()

	if cfg.Sessions != nil {
		router.POST("/api/v1/sessions", cfg.Sessions.Create)
		router.GET("/api/v1/sessions/:id", cfg.Sessions.Get)
		router.POST("/api/v1/sessions/:id/timeslots", cfg.Sessions.ProposeTimeslot)
		router.DELETE("/api/v1/sessions/:id/timeslots/:timeslotID", cfg.Sessions.RemoveTimeslot)
	}
	if cfg.Votes != nil {
		router.POST("/api/v1/sessions/:id/vote", cfg.Votes.Record)
	}
	if cfg.Admin != nil {
		router.GET("/api/v1/admin/stats", cfg.Admin.Stats)
		router.GET("/health", cfg.Admin.Health)
	}

	var handler http.Handler = router
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}
