package recheck

import (
	"errors"
	"net/http"
	"time"

	"annoflow/bizerror"
	"annoflow/misc"
	"annoflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// recheck walks every submitted subtask of a task, keep manual triggers off
// the hot path
var recheckTriggerLimiter = rate.NewLimiter(rate.Every(time.Second), 5)

func RegisterRecheckRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/annotation-tasks", middleWares...)
	g.POST(":id/recheck-correctness", handleRecheck)
}

func handleRecheck(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	if !recheckTriggerLimiter.Allow() {
		c.JSON(http.StatusTooManyRequests, &misc.ErrorBody{Code: "recheck.too_many_requests", Message: "recheck triggered too frequently"})
		c.Abort()
		return
	}

	result, err := RecheckCorrectnessFunc(parsedId, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
