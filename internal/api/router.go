package api

import (
	"github.com/Soar-Robotics/SoarchainPresale/internal/utils"
	"github.com/gin-gonic/gin"
)

func NewRouter(h *Handler, log *utils.Logger, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(log), CORS(corsOrigins))

	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	api.POST("/contribute", h.Contribute)
	api.GET("/contributions", h.Contributions)
	api.GET("/contributions/total", h.ContributionsTotal)
	api.POST("/contact", h.Contact)
	api.POST("/subscribe", h.Subscribe)

	return router
}
