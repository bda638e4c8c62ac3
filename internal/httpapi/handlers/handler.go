package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/ai-studio/internal/config"
	"github.com/suPer8Hu/ai-studio/internal/creation"
	"github.com/suPer8Hu/ai-studio/internal/httpapi/middleware"
)

// PublishedFeed is the cached community feed. A nil feed falls back to the database.
type PublishedFeed interface {
	ListPublished(ctx context.Context, limit int) ([]creation.Creation, error)
}

type Handler struct {
	Cfg       config.Config
	Creations *creation.Service
	Feed      PublishedFeed
}

func NewHandler(cfg config.Config, svc *creation.Service, feed PublishedFeed) *Handler {
	return &Handler{Cfg: cfg, Creations: svc, Feed: feed}
}

func callerFrom(c *gin.Context) creation.Caller {
	return creation.Caller{
		UserID: c.GetString(middleware.UserIDKey),
		Plan:   creation.Plan(c.GetString(middleware.PlanKey)),
	}
}
