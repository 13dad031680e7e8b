package prayer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"praycalendar/internal/shared/constants"
	"praycalendar/internal/shared/utils/response"
	"praycalendar/pkg/cache"
	"praycalendar/pkg/logger"
)

const (
	contentTypeICS  = "text/calendar; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// UsageRecorder counts served calendar requests. Implementations must never
// block or fail the request path.
type UsageRecorder interface {
	RecordRequest(location string)
}

type Controller interface {
	GetCalendarICS(c *gin.Context)
	GetCalendarJSON(c *gin.Context)
}

type controller struct {
	service   Service
	responses cache.Service
	recorder  UsageRecorder
	logger    *logger.Logger
	now       func() time.Time
}

func NewController(service Service, responses cache.Service, recorder UsageRecorder, log *logger.Logger) Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &controller{
		service:   service,
		responses: responses,
		recorder:  recorder,
		logger:    log,
		now:       time.Now,
	}
}

func (ctrl *controller) GetCalendarICS(c *gin.Context) {
	ctrl.serveCalendar(c, "ics")
}

func (ctrl *controller) GetCalendarJSON(c *gin.Context) {
	ctrl.serveCalendar(c, "json")
}

// serveCalendar is the shared request path: bind, tag, check the response
// cache and the client's ETag, and only then touch the month cache and the
// upstream provider.
func (ctrl *controller) serveCalendar(c *gin.Context, format string) {
	var query CalendarQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", err.Error())
		return
	}
	query.Normalize()
	if err := query.Validate(); err != nil {
		response.BadRequest(c, err.Error(), nil)
		return
	}

	now := ctrl.now()
	tag := CacheTag(query.ParamMap(format), now)
	etag := `"` + tag + `"`

	c.Header("Cache-Control", CacheControlValue(now))
	c.Header("ETag", etag)
	c.Header("Cache-Tag", tag)

	if match := c.GetHeader("If-None-Match"); match == etag {
		c.Status(http.StatusNotModified)
		return
	}

	contentType := contentTypeJSON
	if format == "ics" {
		contentType = contentTypeICS
	}

	location := NormalizeLocation(query.Params())
	respKey := constants.BuildResponseKey(tag)

	var body []byte
	if err := ctrl.responses.Get(c.Request.Context(), respKey, &body); err == nil && len(body) > 0 {
		c.Header("X-Cache", "HIT")
		ctrl.record(location)
		c.Data(http.StatusOK, contentType, body)
		return
	}

	days, err := ctrl.service.GetPrayerTimes(c.Request.Context(), query.Params(), query.Months)
	if err != nil {
		ctrl.respondUpstreamError(c, err)
		return
	}

	body, err = ctrl.render(days, query, format, now)
	if err != nil {
		ctrl.logger.ErrorWithContext(c.Request.Context(), "Failed to render calendar", err, nil)
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to render calendar", nil, nil)
		return
	}

	ctrl.responses.SetAsync(respKey, body, UntilLocalMidnight(now))

	c.Header("X-Cache", "MISS")
	ctrl.record(location)
	c.Data(http.StatusOK, contentType, body)
}

func (ctrl *controller) render(days []Day, query CalendarQuery, format string, now time.Time) ([]byte, error) {
	events := BuildEvents(days, query.Options(), now)
	if events == nil {
		events = []Event{}
	}

	if format == "ics" {
		name := CalendarName(query.Address, query.Lang)
		return RenderICS(events, name, FirstTimezone(days)), nil
	}

	doc := EventDocument{
		Calendar: CalendarName(query.Address, query.Lang),
		Timezone: FirstTimezone(days),
		Events:   events,
		Count:    len(events),
	}
	return json.Marshal(doc)
}

func (ctrl *controller) respondUpstreamError(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) {
		c.Status(499)
		return
	}

	var fe *FetchError
	if errors.As(err, &fe) {
		ctrl.logger.ErrorWithContext(c.Request.Context(), "Upstream prayer time fetch failed", err, map[string]interface{}{"attempts": fe.Attempts})
		response.RespondJSON(c, "error", http.StatusBadGateway, "Prayer time provider unavailable", nil, gin.H{
			"attempts": fe.Attempts,
		})
		return
	}

	ctrl.logger.ErrorWithContext(c.Request.Context(), "Failed to resolve prayer times", err, nil)
	response.RespondJSON(c, "error", http.StatusBadGateway, "Prayer time provider unavailable", nil, nil)
}

func (ctrl *controller) record(location string) {
	if ctrl.recorder != nil {
		ctrl.recorder.RecordRequest(location)
	}
}
