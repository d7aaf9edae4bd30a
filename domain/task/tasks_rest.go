package task

import (
	"errors"
	"net/http"

	"annoflow/bizerror"
	"annoflow/domain"
	"annoflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathTasks = "/v1/annotation-tasks"
)

func RegisterTasksRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathTasks, middleWares...)
	g.GET("", handleQuery)
	g.POST("", handleCreate)
	g.GET(":id", handleDetail)
	g.PATCH(":id/approve", handleApprove)
}

func handleQuery(c *gin.Context) {
	query := domain.TaskQuery{}
	err := c.MustBindWith(&query, binding.Query)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	tasks, err := QueryTasksFunc(&query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, tasks)
}

func handleCreate(c *gin.Context) {
	creation := domain.TaskCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := CreateTaskFunc(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func handleDetail(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	detail, err := DetailTaskFunc(parsedId, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleApprove(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	if err := ApproveTaskFunc(parsedId, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}
