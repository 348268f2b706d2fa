package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/internal/extract"
	"github.com/pageza/nutriwise/backend/internal/middleware"
)

// respondFailure renders a Failure. Bad input is the caller's fault; every
// other kind means the oracle or storage let us down.
func respondFailure(c *gin.Context, f *extract.Failure) {
	status := http.StatusBadGateway
	switch f.Kind {
	case extract.InputFailure:
		status = http.StatusBadRequest
	case extract.StoreFailure:
		status = http.StatusInternalServerError
	}
	c.JSON(status, f)
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return id, ok
}
