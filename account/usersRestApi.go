package account

import (
	"errors"
	"net/http"

	"annoflow/bizerror"
	"annoflow/misc"
	"annoflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterUsersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/users", middleWares...)
	g.GET("", handleQueryUsers)
	g.POST("", handleCreateUser)
	g.PATCH(":id/ban", handleBanUser)
	g.PATCH(":id/unban", handleUnbanUser)
	g.POST(":id/points", handleCreditPoints)
}

func parseUserId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}

func handleQueryUsers(c *gin.Context) {
	users, err := QueryUsers(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: users, Total: uint64(len(*users))})
}

func handleCreateUser(c *gin.Context) {
	creation := UserCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	info, err := CreateUserFunc(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, info)
}

func handleBanUser(c *gin.Context) {
	if err := BanUserFunc(parseUserId(c), session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleUnbanUser(c *gin.Context) {
	if err := UnbanUserFunc(parseUserId(c), session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleCreditPoints(c *gin.Context) {
	crediting := PointsCrediting{}
	if err := c.ShouldBindBodyWith(&crediting, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := CreditPointsFunc(parseUserId(c), crediting.Points, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}
