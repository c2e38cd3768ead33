package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string identifier of the form MODULE_NNN.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Sentinel codes that are not failures.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeMessagingError     ErrorCode = "COMMON_017"
	ErrCodeStorageError       ErrorCode = "COMMON_018"
	ErrCodeRateLimited        ErrorCode = "COMMON_019"
)

// Screening module error codes
const (
	ErrCodeTrainingDataMissing  ErrorCode = "RSK_001"
	ErrCodeInvalidTrainingData  ErrorCode = "RSK_002"
	ErrCodeModelArtifactInvalid ErrorCode = "RSK_003"
	ErrCodeModelNotReady        ErrorCode = "RSK_004"
	ErrCodeRetrievalFailure     ErrorCode = "RSK_005"
	ErrCodeUnknownTypology      ErrorCode = "RSK_006"
	ErrCodeArtifactNotFound     ErrorCode = "RSK_007"
	ErrCodeCorpusInvalid        ErrorCode = "RSK_008"
)

// Aliases kept for call sites that read better with the short form.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
)

// ErrorCodeHTTPStatus maps codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeRateLimited:        http.StatusTooManyRequests,

	ErrCodeTrainingDataMissing:  http.StatusServiceUnavailable,
	ErrCodeInvalidTrainingData:  http.StatusUnprocessableEntity,
	ErrCodeModelArtifactInvalid: http.StatusInternalServerError,
	ErrCodeModelNotReady:        http.StatusServiceUnavailable,
	ErrCodeRetrievalFailure:     http.StatusBadGateway,
	ErrCodeUnknownTypology:      http.StatusBadRequest,
	ErrCodeArtifactNotFound:     http.StatusNotFound,
	ErrCodeCorpusInvalid:        http.StatusUnprocessableEntity,
}

// ErrorCodeMessage holds the default message of each code.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization error",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeMessagingError:     "messaging error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeRateLimited:        "rate limit exceeded, please retry later",

	ErrCodeTrainingDataMissing:  "training data missing",
	ErrCodeInvalidTrainingData:  "training data cannot produce a model",
	ErrCodeModelArtifactInvalid: "persisted model artifact is invalid",
	ErrCodeModelNotReady:        "risk model is not ready",
	ErrCodeRetrievalFailure:     "article retrieval failed",
	ErrCodeUnknownTypology:      "unknown risk typology",
	ErrCodeArtifactNotFound:     "model artifact not found",
	ErrCodeCorpusInvalid:        "article corpus is invalid",
}

// HTTPStatusForCode returns the HTTP status of code, 500 when unmapped.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message of code.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError reports whether code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether code maps to a 5xx status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the MODULE prefix of code.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
