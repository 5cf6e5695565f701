package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// parseIDParam parses the named path parameter as a UUID. On failure
// it writes a 400 response and reports false.
func parseIDParam(c *gin.Context, base *BaseHandler, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		base.BadRequest(c, "invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// parseTimeQuery parses an optional RFC 3339 query parameter, falling
// back to the given default when absent
func parseTimeQuery(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// parseUUIDQuery parses an optional UUID query parameter, reporting nil
// when absent
func parseUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
