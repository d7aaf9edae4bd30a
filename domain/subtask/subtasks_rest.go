package subtask

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
	PathSubtasks = "/v1/annotation-subtasks"
)

func RegisterSubtasksRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathSubtasks, middleWares...)
	g.PATCH(":id/claim", handleClaim)
	g.GET(":id/annotations", handleQueryAnnotations)
	g.POST(":id/annotations", handleSaveAnnotations)
	g.POST(":id/approve-review", handleApproveReview)
	g.POST(":id/reject-review", handleRejectReview)

	t := r.Group("/v1/annotation-tasks", middleWares...)
	t.POST(":id/submit", handleSubmit)
}

func parseId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}

func handleClaim(c *gin.Context) {
	claimed, err := ClaimSubtaskFunc(parseId(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, claimed)
}

func handleSubmit(c *gin.Context) {
	result, err := SubmitTaskFunc(parseId(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func handleQueryAnnotations(c *gin.Context) {
	annotations, err := QueryAnnotationsFunc(parseId(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, annotations)
}

func handleSaveAnnotations(c *gin.Context) {
	var rows []domain.AnnotationRowSaving
	if err := c.ShouldBindBodyWith(&rows, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := SaveAnnotationsFunc(parseId(c), rows, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleApproveReview(c *gin.Context) {
	if err := ApproveReviewFunc(parseId(c), session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleRejectReview(c *gin.Context) {
	if err := RejectReviewFunc(parseId(c), session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}
