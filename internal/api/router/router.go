package router

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/api/handlers"
	"github/chapool/go-trader/internal/api/httperrors"
	"github/chapool/go-trader/internal/api/middleware"
)

func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Logger.Level.String() == "debug" || s.Config.Logger.Level.String() == "trace"
	s.Echo.HideBanner = true
	s.Echo.HTTPErrorHandler = httperrors.HTTPErrorHandler

	// ---
	// General middleware
	if s.Config.Echo.EnableRecoverMiddleware {
		s.Echo.Use(echoMiddleware.Recover())
	} else {
		log.Warn().Msg("Disabling recover middleware due to environment config")
	}

	s.Echo.Use(echoMiddleware.RequestID())

	if s.Config.Echo.EnableLoggerMiddleware {
		s.Echo.Use(middleware.Logger())
	} else {
		log.Warn().Msg("Disabling logger middleware due to environment config")
	}

	if s.Config.Echo.EnableCORSMiddleware {
		s.Echo.Use(echoMiddleware.CORS())
	} else {
		log.Warn().Msg("Disabling CORS middleware due to environment config")
	}

	// ---
	// Initialize our general groups and set middleware to use above them
	s.Router = &api.Router{
		Routes: nil, // will be populated by handlers.AttachAllRoutes(s)

		// Unsecured base group available at /**
		Root: s.Echo.Group(""),

		// Management endpoints, available at /-/**
		Management: s.Echo.Group("/-"),

		// Transaction builders, available at /api/v1/trade/*
		APIV1Trade: s.Echo.Group("/api/v1/trade"),

		// Open position reads, available at /api/v1/trades/*
		APIV1Trades: s.Echo.Group("/api/v1/trades"),

		// Delegate setup helpers, available at /api/v1/delegate/*
		APIV1Delegate: s.Echo.Group("/api/v1/delegate"),
	}

	s.Router.Routes = append(s.Router.Routes,
		s.Router.Root.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))),
	)

	// ---
	// Finally attach our handlers
	handlers.AttachAllRoutes(s)
}
