package testinfra

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"annoflow/authority"
	"annoflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx builds a security context for tests, bypassing the session
// surface.
func BuildSecCtx(uid types.ID, role authority.Role) *session.Context {
	return &session.Context{
		Token:    "test-token",
		Identity: session.Identity{ID: uid, Name: "user" + uid.String()},
		Role:     role,
	}
}

func BuildBannedSecCtx(uid types.ID, role authority.Role) *session.Context {
	sec := BuildSecCtx(uid, role)
	sec.Banned = true
	return sec
}

// ExecuteRequest runs a request against the router and returns status, body
// and response.
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *http.Response) {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	resp := recorder.Result()
	bodyBytes, _ := ioutil.ReadAll(resp.Body)
	return resp.StatusCode, string(bodyBytes), resp
}
