package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"praycalendar/internal/shared/constants"
	"praycalendar/internal/shared/utils/response"
)

type Controller interface {
	GetStats(c *gin.Context)
	PurgeCache(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetStats(c *gin.Context) {
	stats, err := ctrl.service.GetStats(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusServiceUnavailable, "Stats unavailable", nil, err.Error())
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Usage statistics", stats, nil)
}

func (ctrl *controller) PurgeCache(c *gin.Context) {
	pattern := c.DefaultQuery("pattern", constants.PATTERN_RESPONSES)

	result, err := ctrl.service.PurgeCache(c.Request.Context(), pattern)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Purge failed", nil, err.Error())
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Cache purged", result, nil)
}
