package devserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quiz-player/internal/auth"
	"quiz-player/internal/quiz"
)

type API struct {
	store  *Store
	secret string
}

func NewAPI(store *Store, secret string) *API {
	if store == nil {
		store = NewStore()
	}
	return &API{store: store, secret: secret}
}

// canSeeKey reports whether userID may see answer keys before submitting.
func canSeeKey(q quiz.Quiz, userID string) bool {
	return userID != "" && q.OwnerID == userID
}

func (a *API) HandlePublicQuiz(c *gin.Context) {
	q, err := a.store.Quiz(c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	if !canSeeKey(q, c.GetString(contextUserID)) {
		q = q.Public()
	}
	c.JSON(http.StatusOK, q)
}

// HandleFullQuiz serves answer keys to the owner. Ownerless quizzes (seeded
// trivia) are open to any signed-in user so results can be reviewed.
func (a *API) HandleFullQuiz(c *gin.Context) {
	q, err := a.store.Quiz(c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	userID := c.GetString(contextUserID)
	if q.OwnerID != "" && q.OwnerID != userID {
		abortJSON(c, http.StatusForbidden, "only the quiz owner can view answers")
		return
	}
	c.JSON(http.StatusOK, q)
}

func (a *API) HandleSubmit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}

	answers, err := quiz.DecodeAnswers(req.Answers)
	if err != nil {
		abortJSON(c, http.StatusBadRequest, "answers must be numbers, arrays of numbers, or null")
		return
	}

	record, full, err := a.store.Submit(c.GetString(contextUserID), c.Param("id"), answers, req.Duration)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, submitResponse{
		Success:        true,
		Score:          record.Score,
		TotalQuestions: record.TotalQuestions,
		Duration:       record.Duration,
		AttemptID:      record.ID,
		Quiz:           &full,
	})
}

// HandleUserAttempts answers 404 when the caller has no attempts at all.
func (a *API) HandleUserAttempts(c *gin.Context) {
	records := a.store.Attempts(c.GetString(contextUserID))
	if len(records) == 0 {
		abortJSON(c, http.StatusNotFound, "no attempts found")
		return
	}
	c.JSON(http.StatusOK, records)
}

func (a *API) HandleDeleteAttempt(c *gin.Context) {
	if err := a.store.DeleteAttempt(c.GetString(contextUserID), c.Param("attemptId")); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (a *API) HandleDevToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		abortJSON(c, http.StatusBadRequest, "userId is required")
		return
	}

	token, err := auth.IssueToken(strings.TrimSpace(req.UserID), a.secret, auth.DefaultTokenTTL)
	if err != nil {
		abortJSON(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, quiz.ErrNotFound):
		abortJSON(c, http.StatusNotFound, "not found")
	case errors.Is(err, ErrAttemptLimit):
		abortJSON(c, http.StatusConflict, ErrAttemptLimit.Error())
	default:
		abortJSON(c, http.StatusInternalServerError, "request failed")
	}
}
