package cqe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"video-pipeline/pkg/errno"
)

func TestUploadVideoReqValidate(t *testing.T) {
	valid := func() *UploadVideoReq {
		return &UploadVideoReq{
			FileName: "movie.mp4",
			Content:  strings.NewReader("data"),
			Size:     4,
		}
	}

	t.Run("valid request", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing content", func(t *testing.T) {
		req := valid()
		req.Content = nil
		assert.ErrorIs(t, req.Validate(), errno.ErrMissingUpload)
	})

	t.Run("blank file name", func(t *testing.T) {
		req := valid()
		req.FileName = "   "
		assert.ErrorIs(t, req.Validate(), errno.ErrFileNameIllegal)
	})

	t.Run("path traversal in file name", func(t *testing.T) {
		for _, name := range []string{"../etc/passwd", "a/b.mp4", "..mp4.."} {
			req := valid()
			req.FileName = name
			assert.ErrorIs(t, req.Validate(), errno.ErrFileNameIllegal, name)
		}
	})

	t.Run("job uuid optional", func(t *testing.T) {
		req := valid()
		req.JobUUID = "550e8400-e29b-41d4-a716-446655440000"
		assert.NoError(t, req.Validate())
	})

	t.Run("malformed job uuid", func(t *testing.T) {
		req := valid()
		req.JobUUID = "not-a-uuid"
		assert.ErrorIs(t, req.Validate(), errno.ErrJobIDRequired)
	})
}
