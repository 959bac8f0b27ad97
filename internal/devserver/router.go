package devserver

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func NewRouter(store *Store, secret string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	api := NewAPI(store, secret)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	group := router.Group("/api", identify(secret))
	group.GET("/quiz/:id/public", api.HandlePublicQuiz)
	group.POST("/dev/token", api.HandleDevToken)

	authorized := group.Group("", requireUser())
	authorized.GET("/quiz/:id", api.HandleFullQuiz)
	authorized.POST("/quiz/:id/submit", api.HandleSubmit)
	authorized.GET("/attempts/user", api.HandleUserAttempts)
	authorized.DELETE("/attempts/:attemptId", api.HandleDeleteAttempt)

	return router
}
