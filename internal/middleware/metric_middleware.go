package middleware

import (
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
)

// SetupPrometheus exposes request metrics on /metrics under the galeria
// subsystem.
func SetupPrometheus(r *gin.Engine) {
	p := ginprometheus.NewPrometheus("galeria")

	// Report the route template, not the raw URL, so album and image IDs
	// do not explode the label cardinality.
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		if path := c.FullPath(); path != "" {
			return path
		}
		return "unmatched"
	}

	p.Use(r)
}
