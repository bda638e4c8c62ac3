package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/ai-studio/internal/common"
	"github.com/suPer8Hu/ai-studio/internal/creation"
	"github.com/suPer8Hu/ai-studio/internal/httpapi/handlers"
	"github.com/suPer8Hu/ai-studio/internal/httpapi/middleware"
)

// multipart bodies above this spill to disk
const maxMultipartMemory = 8 << 20

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.MaxMultipartMemory = maxMultipartMemory
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Use(middleware.RequestID())
	if len(h.Cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     h.Cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/ping", h.Ping)

	// auth runs before any multipart parsing
	aiGroup := r.Group("/api/ai")
	aiGroup.Use(middleware.AuthRequired(h.Cfg.JWTSecret), middleware.LimitBody(creation.MaxUploadBytes))
	aiGroup.POST("/generate-article", h.GenerateArticle)
	aiGroup.POST("/generate-blog-title", h.GenerateBlogTitle)
	aiGroup.POST("/generate-image", h.GenerateImage)
	aiGroup.POST("/remove-image-background", h.RemoveImageBackground)
	aiGroup.POST("/remove-image-object", h.RemoveImageObject)
	aiGroup.POST("/resume-review", h.ResumeReview)

	userGroup := r.Group("/api/user")
	userGroup.Use(middleware.AuthRequired(h.Cfg.JWTSecret))
	userGroup.GET("/get-user-creations", h.GetUserCreations)
	userGroup.GET("/get-published-creations", h.GetPublishedCreations)
	return r
}
