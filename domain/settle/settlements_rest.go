package settle

import (
	"errors"
	"net/http"

	"annoflow/authority"
	"annoflow/bizerror"
	"annoflow/domain"
	"annoflow/persistence"
	"annoflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

func RegisterSettleRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/annotation-tasks", middleWares...)
	g.POST(":id/aggregate", handleAggregate)
}

// AggregateByActor is the manual trigger surface: only the task's publisher
// or an admin may force an aggregation run.
func AggregateByActor(taskId types.ID, sec *session.Context) (*AggregateResult, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	task := domain.AnnotationTask{ID: taskId}
	if err := persistence.ActiveDataSourceManager.GormDB().Where(&task).First(&task).Error; err != nil {
		return nil, err
	}
	if task.PublisherID != sec.Identity.ID && !sec.HasCapability(authority.ManageAnyTask) {
		return nil, bizerror.ErrForbidden
	}
	return AggregateFunc(taskId)
}

func handleAggregate(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	result, err := AggregateByActor(parsedId, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
