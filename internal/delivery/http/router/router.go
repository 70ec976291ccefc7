// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"reviewhub/internal/delivery/http/middleware"
	"reviewhub/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	ConnectHandler *handler.ConnectHandler
	SyncHandler    *handler.SyncHandler
	ReviewHandler  *handler.ReviewHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	connectHandler *handler.ConnectHandler
	syncHandler    *handler.SyncHandler
	reviewHandler  *handler.ReviewHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		connectHandler: params.ConnectHandler,
		syncHandler:    params.SyncHandler,
		reviewHandler:  params.ReviewHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/device", r.authHandler.RegisterDevice, r.authMiddleware.Authenticate)
	}

	// Platform connection flow. The callback is hit by the provider redirect
	// and authenticates through the signed state, not a session token.
	connectGroup := e.Group("/connect")
	{
		connectGroup.GET("/google/callback", r.connectHandler.Callback)
		connectGroup.GET("/google", r.connectHandler.Start, r.authMiddleware.Authenticate)
		connectGroup.GET("", r.connectHandler.List, r.authMiddleware.Authenticate)
	}

	// Ingestion trigger
	e.POST("/sync", r.syncHandler.Sync, r.authMiddleware.Authenticate)

	// Review dashboard and reply workflow
	reviewGroup := e.Group("/reviews")
	reviewGroup.Use(r.authMiddleware.Authenticate)
	{
		reviewGroup.GET("", r.reviewHandler.List)
		reviewGroup.POST("/:id/reply/generate", r.reviewHandler.GenerateReply)
		reviewGroup.PUT("/:id/reply", r.reviewHandler.EditReply)
		reviewGroup.POST("/:id/reply/approve", r.reviewHandler.ApproveReply)
		reviewGroup.POST("/:id/reply/post", r.reviewHandler.PostReply)
	}
}
