package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"equiptrack/app"
	"equiptrack/config"
	"equiptrack/loans"
	"equiptrack/risk"
	"equiptrack/session"
	"equiptrack/store"
	"equiptrack/suspension"
)

// Srv bundles the engine and collaborators the controllers call into.
type Srv struct {
	Store   store.Store
	Loans   *loans.Manager
	Scanner *risk.Scanner
	Susp    *suspension.Manager
	AppSess *session.AppSessionStore
	Cfg     config.Config
}

// setAppCookie writes the session cookie the way the SPA expects.
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.Cfg.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

// respondErr maps engine errors onto HTTP statuses with enough context
// for the UI to render a precise message.
func respondErr(c *gin.Context, err error) {
	var re *loans.RestrictedError
	var ue *loans.UnavailableError
	switch {
	case errors.As(err, &re):
		c.JSON(http.StatusForbidden, app.H{
			"error":   "student restricted",
			"reason":  re.Reason,
			"endDate": re.EndDate,
		})
	case errors.As(err, &ue):
		c.JSON(http.StatusConflict, app.H{
			"error":       "equipment unavailable",
			"equipmentId": ue.EquipmentID,
			"status":      ue.Status,
		})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, app.H{"error": "conflict, please retry", "retryable": true})
	case errors.Is(err, suspension.ErrAlreadySuspended):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, loans.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": err.Error()})
	case errors.Is(err, loans.ErrNoEquipment),
		errors.Is(err, suspension.ErrEmptyReason),
		errors.Is(err, suspension.ErrInvalidDuration),
		errors.Is(err, suspension.ErrInvalidCount):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}

func callerID(c *gin.Context) string {
	v, _ := c.Get("userID")
	id, _ := v.(string)
	return id
}
