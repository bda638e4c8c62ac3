package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/ai-studio/internal/common"
	"github.com/suPer8Hu/ai-studio/internal/creation"
)

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		return 100
	}
	return n
}

func (h *Handler) GetUserCreations(c *gin.Context) {
	caller := callerFrom(c)
	items, err := h.Creations.ListUserCreations(c.Request.Context(), caller.UserID, queryLimit(c))
	if err != nil {
		log.Printf("[GetUserCreations] list failed uid=%s err=%v", caller.UserID, err)
		common.Fail(c, http.StatusOK, creation.MsgRetry)
		return
	}
	common.OK(c, items)
}

// GetPublishedCreations serves the community feed from Redis, falling back to the
// database when the cache is empty or unavailable.
func (h *Handler) GetPublishedCreations(c *gin.Context) {
	ctx := c.Request.Context()
	limit := queryLimit(c)

	if h.Feed != nil {
		items, err := h.Feed.ListPublished(ctx, limit)
		if err == nil && len(items) > 0 {
			common.OK(c, items)
			return
		}
		if err != nil {
			log.Printf("[GetPublishedCreations] feed read failed err=%v", err)
		}
	}

	items, err := h.Creations.ListPublished(ctx, limit)
	if err != nil {
		log.Printf("[GetPublishedCreations] list failed err=%v", err)
		common.Fail(c, http.StatusOK, creation.MsgRetry)
		return
	}
	common.OK(c, items)
}
