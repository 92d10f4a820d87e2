package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and loads the user's
// identity into the request context. Requests without a token pass
// through; handlers that need identity reject them individually.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		if auth == "" {
			c.Next()
			return
		}

		bearer := "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		auth = auth[len(bearer):]

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		user, err := models.GetUserById(c.Request.Context(), claim.ID)
		if err != nil || !utils.DereferencePtr(user.IsActive) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetUserIdInContext(c.Request.Context(), user.ID)
		ctx = utils.SetUsernameInContext(ctx, user.Username)
		ctx = utils.SetBusinessIdInContext(ctx, user.BusinessId)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// TerminalMiddleware attaches the terminal identity sent by the POS
// client on every request.
func TerminalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get("x-terminal-id")
		if header == "" {
			c.Next()
			return
		}
		terminalId, err := strconv.Atoi(header)
		if err != nil || terminalId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid terminal id"})
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(utils.SetTerminalIdInContext(c.Request.Context(), terminalId))
		c.Next()
	}
}
