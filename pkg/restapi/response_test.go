package restapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline/pkg/errno"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	return ctx, recorder
}

func TestSuccess(t *testing.T) {
	ctx, recorder := newTestContext(t)

	Success(ctx, gin.H{"hello": "world"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, errno.OK.Code, resp.Code)
}

func TestAccepted(t *testing.T) {
	ctx, recorder := newTestContext(t)

	Accepted(ctx, gin.H{"job_uuid": "x"})

	assert.Equal(t, http.StatusAccepted, recorder.Code)
}

func TestFailedStatusMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
	}{
		{errno.ErrInvalidParam, http.StatusBadRequest},
		{errno.ErrJobNotFound, http.StatusNotFound},
		{errno.ErrTaskNotFound, http.StatusNotFound},
		{errno.ErrWorkerNotFound, http.StatusNotFound},
		{errno.ErrQueueFull, http.StatusTooManyRequests},
		{errno.ErrMissingUpload, http.StatusBadRequest},
		{errno.ErrInternalServer, http.StatusInternalServerError},
		{fmt.Errorf("plain error"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		ctx, recorder := newTestContext(t)
		Failed(ctx, c.err)
		assert.Equal(t, c.wantStatus, recorder.Code, "error: %v", c.err)
	}
}

func TestFailedKeepsErrnoCode(t *testing.T) {
	ctx, recorder := newTestContext(t)

	Failed(ctx, errno.ErrJobNotFound)

	var resp Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, errno.ErrJobNotFound.Code, resp.Code)
	assert.Equal(t, errno.ErrJobNotFound.Message, resp.Message)
}
