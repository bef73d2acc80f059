package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemdash/pkg/common/code"
)

type Error struct {
	Msg  string   `json:"msg"`
	Info []string `json:"info,omitempty"`
}

type Resp struct {
	Code  code.ErrCode `json:"code"`
	Data  any          `json:"data,omitempty"`
	Error *Error       `json:"error,omitempty"`
}

type RespT[T any] struct {
	Code  code.ErrCode `json:"code"`
	Data  T            `json:"data"`
	Error *Error       `json:"error,omitempty"`
}

func ReplyOk(ctx *gin.Context, data ...any) {
	resp := &Resp{Code: code.Success}
	if len(data) > 0 {
		resp.Data = data[0]
	}
	ctx.JSON(http.StatusOK, resp)
}

// ReplyErr writes err as the envelope error. Extra msgs are appended as info lines.
func ReplyErr(ctx *gin.Context, err error, msgs ...string) {
	c := code.Of(err)
	resp := &Resp{
		Code:  c,
		Error: &Error{Msg: c.String(), Info: msgs},
	}
	var e *code.Error
	if errors.As(err, &e) && e.Msg != "" {
		resp.Error.Info = append([]string{e.Msg}, resp.Error.Info...)
	}
	ctx.JSON(httpStatus(c), resp)
}

// Reply writes data on success and the error envelope otherwise.
func Reply(ctx *gin.Context, err error, data ...any) {
	if err != nil {
		ReplyErr(ctx, err)
		return
	}
	ReplyOk(ctx, data...)
}

func httpStatus(c code.ErrCode) int {
	switch c {
	case code.UnLogin, code.InvalidToken, code.LoginFormatErr, code.SessionNotFound:
		return http.StatusUnauthorized
	case code.LoginErr:
		return http.StatusUnauthorized
	case code.ParamErr:
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// ReplyState writes data even when err is set. Used by actions whose failure
// is already part of the returned state.
func ReplyState(ctx *gin.Context, err error, data any) {
	if err == nil {
		ReplyOk(ctx, data)
		return
	}
	c := code.Of(err)
	ctx.JSON(httpStatus(c), &Resp{
		Code:  c,
		Data:  data,
		Error: &Error{Msg: c.String()},
	})
}
