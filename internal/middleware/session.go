package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"astrobooking/internal/domain"
	"astrobooking/internal/pkg/jwt"
)

const (
	ctxSession = "session"
	ctxSubject = "subject"
)

// BearerSession copies the Authorization bearer credential into the request
// context as a domain.Session. It never rejects a request: whether a
// credential is required is decided by the operation that needs it.
func BearerSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := strings.TrimSpace(c.GetHeader("Authorization"))
		token := ""
		if len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
			token = strings.TrimSpace(h[len("Bearer "):])
		}

		c.Set(ctxSession, domain.Session{Token: token})
		if token != "" {
			if sub, err := jwt.Subject(token); err == nil {
				c.Set(ctxSubject, sub)
			}
		}
		c.Next()
	}
}

// SessionFrom returns the credential captured by BearerSession; the zero
// Session when absent.
func SessionFrom(c *gin.Context) domain.Session {
	if v, ok := c.Get(ctxSession); ok {
		if s, ok := v.(domain.Session); ok {
			return s
		}
	}
	return domain.Session{}
}

// SubjectFrom returns the token subject, if the credential was a JWT.
func SubjectFrom(c *gin.Context) string {
	return c.GetString(ctxSubject)
}
