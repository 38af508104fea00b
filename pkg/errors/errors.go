package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	ErrCodeInvalidParameter ErrCode = "INVALID_PARAMETER"
	ErrCodeWorkspaceUnknown ErrCode = "WORKSPACE_UNKNOWN"
	ErrCodeModelUnknown     ErrCode = "MODEL_UNKNOWN"
	ErrCodeImageUnknown     ErrCode = "IMAGE_UNKNOWN"
	ErrCodeOperationUnknown ErrCode = "OPERATION_UNKNOWN"
	ErrCodeArtifactUnknown  ErrCode = "ARTIFACT_UNKNOWN"
	ErrCodeImageBuildFailed ErrCode = "IMAGE_BUILD_FAILED"
	ErrCodeDigestInvalid    ErrCode = "DIGEST_INVALID"
	ErrCodeUnauthorized     ErrCode = "UNAUTHORIZED"
	ErrCodeDenied           ErrCode = "DENIED"
	ErrCodeUnsupported      ErrCode = "UNSUPPORTED"
	ErrCodeUnknow           ErrCode = "UNKNOWN"
	ErrCodeInternal         ErrCode = "INTERNAL"
)

type ErrCode string

type ErrorInfo struct {
	HttpStatus int     `json:"-"`
	Code       ErrCode `json:"code"`
	Message    string  `json:"message"`
	Detail     string  `json:"detail"`
}

func (e ErrorInfo) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func IsErrCode(err error, code ErrCode) bool {
	if err == nil {
		return false
	}
	info := ErrorInfo{}
	if errors.As(err, &info) {
		return info.Code == code
	}
	return false
}

func NewUnauthorizedError(msg string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: msg}
}

func NewUnsupportedError(msg string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotImplemented, Code: ErrCodeUnsupported, Message: msg}
}

func NewInternalError(err error) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusInternalServerError, Code: ErrCodeInternal, Message: err.Error()}
}

func NewParameterInvalidError(msg string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeInvalidParameter, Message: msg}
}

func NewWorkspaceUnknownError(name string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotFound, Code: ErrCodeWorkspaceUnknown, Message: fmt.Sprintf("workspace: %s not found", name)}
}

func NewModelUnknownError(name string, version int) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotFound, Code: ErrCodeModelUnknown, Message: fmt.Sprintf("model: %s version %d not found", name, version)}
}

func NewImageUnknownError(name string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotFound, Code: ErrCodeImageUnknown, Message: fmt.Sprintf("image: %s not found", name)}
}

func NewOperationUnknownError(id string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotFound, Code: ErrCodeOperationUnknown, Message: fmt.Sprintf("operation: %s not found", id)}
}

func NewArtifactUnknownError(runID string, path string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusNotFound, Code: ErrCodeArtifactUnknown, Message: fmt.Sprintf("artifact: %s of run %s not found", path, runID)}
}

func NewImageBuildFailedError(name string, detail string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusInternalServerError, Code: ErrCodeImageBuildFailed, Message: fmt.Sprintf("image: %s build failed", name), Detail: detail}
}

func NewDigestInvalidError(got string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeDigestInvalid, Message: fmt.Sprintf("digest invalid: %s", got)}
}
