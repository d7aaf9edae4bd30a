package recheck_test

import (
	"annoflow/bizerror"
	"annoflow/domain/recheck"
	"annoflow/session"
	"annoflow/testinfra"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestHandleRecheckAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	recheck.RegisterRecheckRestAPI(router)

	t.Run("should be able to handle recheck rest api request and response", func(t *testing.T) {
		var recheckedTask types.ID
		recheck.RecheckCorrectnessFunc = func(taskId types.ID, sec *session.Context) (*recheck.RecheckResult, error) {
			recheckedTask = taskId
			return &recheck.RecheckResult{CheckedCount: 4}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/annotation-tasks/100/recheck-correctness", nil)
		status, respBody, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(respBody).To(MatchJSON(`{"checkedCount": 4}`))
		Expect(recheckedTask).To(Equal(types.ID(100)))
	})

	t.Run("should map forbidden to 403", func(t *testing.T) {
		recheck.RecheckCorrectnessFunc = func(taskId types.ID, sec *session.Context) (*recheck.RecheckResult, error) {
			return nil, bizerror.ErrForbidden
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/annotation-tasks/100/recheck-correctness", nil)
		status, respBody, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(respBody).To(MatchJSON(`{"code": "security.forbidden", "message": "access forbidden", "data": null}`))
	})

	t.Run("should throttle rapid triggers", func(t *testing.T) {
		recheck.RecheckCorrectnessFunc = func(taskId types.ID, sec *session.Context) (*recheck.RecheckResult, error) {
			return &recheck.RecheckResult{}, nil
		}

		throttled := false
		for i := 0; i < 20; i++ {
			req := httptest.NewRequest(http.MethodPost, "/v1/annotation-tasks/100/recheck-correctness", nil)
			status, _, _ := testinfra.ExecuteRequest(req, router)
			if status == http.StatusTooManyRequests {
				throttled = true
				break
			}
			Expect(status).To(Equal(http.StatusOK))
		}
		Expect(throttled).To(BeTrue())
	})

	t.Run("should reject invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/annotation-tasks/abc/recheck-correctness", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})
}
