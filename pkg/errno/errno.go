package errno

// code=0 请求成功
// code=4xx 客户端请求错误
// code=5xx 服务器端错误
// code=2xxxx 业务处理错误码

type Errno struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}
	ErrUnknown        = &Errno{Code: 510, Message: "Unknown error"}

	// 业务错误码
	ErrMissingUpload        = &Errno{Code: 20001, Message: "Upload file is required"}
	ErrFileNameIllegal      = &Errno{Code: 20002, Message: "File name is illegal"}
	ErrJobIDRequired        = &Errno{Code: 20003, Message: "Job ID is required"}
	ErrJobNotFound          = &Errno{Code: 20004, Message: "Upload job not found"}
	ErrChunkFileNameMissing = &Errno{Code: 20005, Message: "Chunk file name is required"}
	ErrBucketNotExist       = &Errno{Code: 20006, Message: "Storage bucket does not exist"}
	ErrUploadError          = &Errno{Code: 20007, Message: "Upload error"}
	// 转码相关错误码
	ErrTaskNotFound      = &Errno{Code: 20008, Message: "Transcode task not found"}
	ErrInvalidTaskStatus = &Errno{Code: 20009, Message: "Invalid task status"}
	ErrInvalidProfile    = &Errno{Code: 20010, Message: "Invalid transcode profile"}
	ErrWorkerNotFound    = &Errno{Code: 20011, Message: "Worker not found"}
	ErrQueueFull         = &Errno{Code: 20012, Message: "Task queue is full"}
	ErrSegmentationBusy  = &Errno{Code: 20013, Message: "Segmentation already in progress"}
	ErrEncoderFailed     = &Errno{Code: 20014, Message: "Encoder execution failed"}
)
