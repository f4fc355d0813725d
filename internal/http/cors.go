package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

// CORSMiddleware adapts the net/http CORS handler to gin. Preflight requests
// are answered by the handler and stop the chain.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	handler := cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	})

	return func(c *gin.Context) {
		passed := false
		handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
			return
		}
		c.Next()
	}
}
