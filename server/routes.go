package server

import (
	"github.com/cloudkeep/authd/middleware/authtoken"
	"github.com/cloudkeep/authd/openapi"
	"github.com/cloudkeep/authd/services/tokens"
)

func RegisterRoutes(s *Server, h *Handlers, tokenSvc *tokens.Service, doc *openapi.Document) {
	api := s.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/confirm-device", h.ConfirmDevice)
	auth.GET("/session", h.CheckSession)
	auth.POST("/logout", h.Logout)

	users := api.Group("/users")
	users.GET("/me", h.Me, authtoken.RequireAccessToken(tokenSvc))

	s.Get("/openapi.json", doc.ServeJSON)
	s.Get("/openapi.yaml", doc.ServeYAML)
}
