package prayer

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupCalendarRoutes mounts the public calendar endpoints. Both formats are
// served from the same query surface.
func SetupCalendarRoutes(router *gin.RouterGroup, controller Controller) {
	router.GET("/calendar.ics", controller.GetCalendarICS)
	router.GET("/calendar.json", controller.GetCalendarJSON)
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Registration only fails for an empty tag name.
		_ = RegisterValidations(v)
	}
}
