// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/lumen/internal/middleware"
)

// DocsPath serves the Swagger UI. The OpenAPI document is registered by the
// docs package, which the server imports for its side effect.
const DocsPath = "/docs"

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	routes        []string
}

// NewRouter creates a router. A nil middleware factory uses the defaults.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order. CORS must be global to answer
	// OPTIONS preflight requests.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/", router.Index)
	r.Get("/health", router.handler.Health)
	r.With(router.chiMiddleware.RateLimit("/predict")).Post("/predict", router.handler.Predict)

	r.Route("/api", func(r chi.Router) {
		r.Get("/grids", router.handler.Grids)
		r.Get("/reco", router.handler.Reco)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get(DocsPath, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, DocsPath+"/index.html", http.StatusMovedPermanently)
	})
	r.Get(DocsPath+"/*", httpSwagger.Handler(
		httpSwagger.URL(DocsPath+"/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	router.routes = walkRoutes(r)
	return r
}

// Index handles GET /, listing the registered routes.
//
// @Summary API index
// @Tags Core
// @Produce json
// @Success 200 {object} APIResponse{data=IndexResponse} "Docs and health links with the route list"
// @Router / [get]
func (router *Router) Index(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(IndexResponse{
		OK:     true,
		Docs:   DocsPath,
		Health: "/health",
		Routes: router.routes,
	})
}

func walkRoutes(r chi.Routes) []string {
	var routes []string
	_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	sort.Strings(routes)
	return routes
}
