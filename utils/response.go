// file: utils/response.go
package utils

import (
	"log/slog"
	"net/http"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/gin-gonic/gin"
)

type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Msg: msg, Data: data})
}

func Error(c *gin.Context, code int, msg string) {
	c.JSON(HTTPStatus(code), Response{Code: code, Msg: msg})
}

// ErrorWithData is Error plus a payload, used for field scoped validation messages.
func ErrorWithData(c *gin.Context, code int, msg string, data interface{}) {
	c.JSON(HTTPStatus(code), Response{Code: code, Msg: msg, Data: data})
}

// Fail writes err as an envelope. AppErrors keep their code and user message,
// anything else is logged and reported as an internal error.
func Fail(c *gin.Context, err error) {
	FailWith(c, err, nil)
}

// FailWith is Fail with extra payload keys next to any field errors.
func FailWith(c *gin.Context, err error, data gin.H) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewSystemError("unexpected error", err)
	}
	if appErr.Internal != nil || appErr.Type == apperrors.TypeSystem {
		slog.Error("request failed",
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"),
			"code", appErr.Code,
			"error", err,
		)
	}
	if len(appErr.Fields) > 0 {
		if data == nil {
			data = gin.H{}
		}
		data["errors"] = appErr.Fields
	}
	if data != nil {
		ErrorWithData(c, appErr.Code, appErr.GetUserMessage(), data)
		return
	}
	Error(c, appErr.Code, appErr.GetUserMessage())
}

// HTTPStatus maps an envelope code to the HTTP status sent alongside it.
func HTTPStatus(code int) int {
	switch {
	case code == 0:
		return http.StatusOK
	case code == apperrors.CodeAlreadyExists, code >= 3000 && code < 4000:
		return http.StatusConflict
	case code == apperrors.CodeBadCredentials,
		code == apperrors.CodeAuthMissing,
		code == apperrors.CodeAuthFormat:
		return http.StatusUnauthorized
	case code == apperrors.CodeForbidden, code == apperrors.CodeClosed:
		return http.StatusForbidden
	case code == apperrors.CodeNotFound:
		return http.StatusNotFound
	case code >= 1000 && code < 3000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
