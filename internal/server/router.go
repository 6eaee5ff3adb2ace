package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/hourgate/internal/metrics"
	"github.com/loykin/hourgate/internal/scheduler"
)

// StatusProvider exposes the scheduler snapshot.
type StatusProvider interface {
	Status() scheduler.Status
}

// Router provides read-only HTTP handlers for the running service.
// Endpoints:
//
//	GET {basePath}/healthz   liveness, always 200
//	GET {basePath}/status    scheduler state, window, next fire, last tick
//	GET {basePath}/metrics   Prometheus exposition
type Router struct {
	src      StatusProvider
	basePath string
}

// NewRouter constructs a new Router with configurable basePath.
func NewRouter(src StatusProvider, basePath string) *Router {
	return &Router{src: src, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/healthz", r.handleHealth)
	group.GET("/status", r.handleStatus)
	group.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

type healthResp struct {
	OK bool `json:"ok"`
}

func (r *Router) handleHealth(c *gin.Context) {
	writeJSON(c, http.StatusOK, healthResp{OK: true})
}

func (r *Router) handleStatus(c *gin.Context) {
	writeJSON(c, http.StatusOK, r.src.Status())
}

// Server is a status HTTP server bound to a listener.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// Listen binds addr and serves the router in the background. Bind errors are
// returned immediately.
func Listen(addr string, src StatusProvider) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		ln: ln,
		srv: &http.Server{
			Handler:           NewRouter(src, "").Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
	go func() { _ = s.srv.Serve(ln) }()
	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Shutdown stops the server gracefully within ctx.
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
