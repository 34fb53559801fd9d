package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-hexagonal-users/pkg/response"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type namedCheck struct {
	name string
	fn   Check
}

// Registry collects modules and mounts them under /api.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	checks      []namedCheck
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

// Use adds middleware applied to every module route.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// AddCheck makes /health depend on fn.
func (r *Registry) AddCheck(name string, fn Check) {
	r.checks = append(r.checks, namedCheck{name: name, fn: fn})
}

// RegisterAll mounts the health check and every added module.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	r.API.GET("/health", r.health)
	for _, m := range r.modules {
		m.Register(r.API)
	}
}

// health answers 503 with the failing checks when any dependency is down.
func (r *Registry) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{}
	failed := false
	for _, ch := range r.checks {
		if err := ch.fn(ctx); err != nil {
			status[ch.name] = err.Error()
			failed = true
			continue
		}
		status[ch.name] = "ok"
	}
	if failed {
		response.Error[any](c, http.StatusServiceUnavailable, "unhealthy", status)
		return
	}
	response.Success(c, http.StatusOK, status, "ok", nil)
}
