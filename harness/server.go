// Package harness exposes a small HTTP surface for driving a simulated
// embedding context and inspecting monitor and host state. It is test and
// debugging tooling; the monitor itself performs no network communication.
package harness

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codeserver/presence-monitor/envsim"
	"github.com/codeserver/presence-monitor/host"
	"github.com/codeserver/presence-monitor/logctx"
	"github.com/codeserver/presence-monitor/monitor"
)

// Server drives one environment/monitor/tracker trio over HTTP.
type Server struct {
	router  *gin.Engine
	env     *envsim.Env
	mon     *monitor.Monitor
	tracker *host.Tracker
}

// envUpdate is the body of POST /api/env. Pointers distinguish "leave
// unchanged" from an explicit false.
type envUpdate struct {
	Hidden  *bool `json:"hidden"`
	Focused *bool `json:"focused"`
}

// New builds the harness router. Mode "prod" selects gin release mode.
func New(env *envsim.Env, mon *monitor.Monitor, tracker *host.Tracker, logger *zap.Logger, mode string) *Server {
	if mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:  gin.New(),
		env:     env,
		mon:     mon,
		tracker: tracker,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(loggerMiddleware(logger))

	s.router.GET("/health", healthHandler)

	api := s.router.Group("/api")
	{
		api.POST("/signal/:name", s.fireSignalHandler)
		api.POST("/env", s.updateEnvHandler)
		api.GET("/status", s.statusHandler)
		api.GET("/host", s.hostHandler)
	}

	return s
}

// Router returns the underlying gin engine, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves the harness on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fireSignalHandler dispatches one environment signal by its DOM event
// name.
func (s *Server) fireSignalHandler(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	sig, ok := knownSignals[name]
	if !ok {
		logctx.Warn(ctx, "Unknown signal requested", zap.String("signal", name))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown signal"})
		return
	}

	s.env.Fire(sig)
	logctx.Info(ctx, "Signal fired", zap.String("signal", name))
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (s *Server) updateEnvHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var update envUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		logctx.Warn(ctx, "Invalid env update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if update.Hidden != nil {
		s.env.SetHidden(*update.Hidden)
	}
	if update.Focused != nil {
		s.env.SetFocused(*update.Focused)
	}

	logctx.Info(ctx, "Environment updated",
		zap.Bool("hidden", s.env.Hidden()),
		zap.Bool("focused", s.env.Focused()))
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (s *Server) statusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.mon.Status())
}

func (s *Server) hostHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Snapshot())
}

var knownSignals = map[string]monitor.Signal{
	string(monitor.SignalFocus):        monitor.SignalFocus,
	string(monitor.SignalBlur):         monitor.SignalBlur,
	string(monitor.SignalVisibility):   monitor.SignalVisibility,
	string(monitor.SignalUnload):       monitor.SignalUnload,
	string(monitor.SignalContentReady): monitor.SignalContentReady,
	string(monitor.SignalLoad):         monitor.SignalLoad,
}

// loggerMiddleware adds a zap logger to the request context
func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := logctx.WithLogger(c.Request.Context(), logger)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
