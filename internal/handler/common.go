package handler

import (
	"errors"
	"log"
	"net/http"

	"moovyzoo/internal/middleware"
	"moovyzoo/internal/pkg"

	"github.com/gin-gonic/gin"
)

func currentUserID(c *gin.Context) string {
	idAny, _ := c.Get(middleware.ContextUserIDKey)
	id, _ := idAny.(string)
	return id
}

// renderErr maps error kinds to statuses. Unexpected errors keep their
// detail in the log only; the client sees the generic message.
func renderErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkg.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
	case errors.Is(err, pkg.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"msg": "already a member"})
	case errors.Is(err, pkg.ErrNotMember):
		c.JSON(http.StatusConflict, gin.H{"msg": "not a member"})
	case errors.Is(err, pkg.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"msg": "access denied"})
	case errors.Is(err, pkg.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "not found"})
	default:
		log.Printf("handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": pkg.ErrUnexpected.Error()})
	}
}

// uuidParam pulls and validates a path id; writes the 400 itself on failure.
func uuidParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if !pkg.IsUUID(id, false) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid " + name})
		return "", false
	}
	return id, true
}
