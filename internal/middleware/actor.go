package middleware

import (
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/festy23/datajpa/internal/audit"
)

// maxActorLength matches the width of the created_by audit columns, in characters.
const maxActorLength = 255

// Actor returns a middleware that puts the value of header into the request
// context as the auditing actor. Invalid UTF-8 is dropped and the value is
// cut to maxActorLength characters. Requests without the header are left as is,
// so the configured fallback auditor applies.
func Actor(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.ToValidUTF8(strings.TrimSpace(c.GetHeader(header)), "")
		if utf8.RuneCountInString(actor) > maxActorLength {
			actor = string([]rune(actor)[:maxActorLength])
		}
		if actor != "" {
			c.Request = c.Request.WithContext(audit.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}
