package code

import (
	"errors"
	"fmt"
)

type ErrCode int

// Error is an ErrCode carrying an extra message or a wrapped cause.
type Error struct {
	Code ErrCode
	Msg  string
	Err  error
}

const (
	Success ErrCode = 0

	UnDefineErr ErrCode = iota + 10000
	ParamErr
	UnLogin
	InvalidToken
	LoginFormatErr
	LoginErr
	SessionNotFound
	RPCHttpErr
	RPCHttpCodeErr
	SessionStoreErr
)

const (
	CompoundQueryErr ErrCode = iota + 20000
	CompoundCreateErr
	CompoundDeleteErr
	CompoundShareErr
	CompoundAlreadySharedErr
	CompoundNotFound
	UserQueryErr
	UserNotFound
	RenderErr
	EmptyQueryErr
	DuplicateCompoundErr
	NoSearchResultErr
	NoUserSelectedErr
	DialogClosedErr
	DashboardClosedErr
)

const (
	NotifyActionAlreadyRegistryErr ErrCode = iota + 30000
	NotifySendMsgErr
	NotifyClosedErr
)

var codeMsg = map[ErrCode]string{
	Success:         "success",
	UnDefineErr:     "undefined error",
	ParamErr:        "parameter error",
	UnLogin:         "not logged in",
	InvalidToken:    "invalid token",
	LoginFormatErr:  "login format error",
	LoginErr:        "login failed",
	SessionNotFound: "session not found",
	RPCHttpErr:      "remote request error",
	RPCHttpCodeErr:  "remote response status error",
	SessionStoreErr: "session store unavailable",

	CompoundQueryErr:         "Failed to fetch compounds",
	CompoundCreateErr:        "Failed to save compound",
	CompoundDeleteErr:        "Failed to delete compound",
	CompoundShareErr:         "Failed to share compound",
	CompoundAlreadySharedErr: "User already has this compound",
	CompoundNotFound:         "compound not found",
	UserQueryErr:             "Failed to fetch users",
	UserNotFound:             "user not found",
	RenderErr:                "Error rendering molecule",
	EmptyQueryErr:            "Please enter a SMILES string",
	DuplicateCompoundErr:     "Compound already in dashboard",
	NoSearchResultErr:        "Nothing to save, search first",
	NoUserSelectedErr:        "Please select a user",
	DialogClosedErr:          "share dialog is not open",
	DashboardClosedErr:       "dashboard is closed",

	NotifyActionAlreadyRegistryErr: "notify action already registered",
	NotifySendMsgErr:               "notify send message error",
	NotifyClosedErr:                "notify center closed",
}

func (c ErrCode) String() string {
	if msg, ok := codeMsg[c]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error code: %d", int(c))
}

func (c ErrCode) Int() int {
	return int(c)
}

func (c ErrCode) Error() string {
	return c.String()
}

func (c ErrCode) WithMsg(msg string) *Error {
	return &Error{Code: c, Msg: msg}
}

func (c ErrCode) WithMsgf(format string, args ...any) *Error {
	return &Error{Code: c, Msg: fmt.Sprintf(format, args...)}
}

func (c ErrCode) WithErr(err error) *Error {
	return &Error{Code: c, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code.String(), e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Code.String(), e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code.String(), e.Err)
	default:
		return e.Code.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match an *Error against its bare ErrCode.
func (e *Error) Is(target error) bool {
	if c, ok := target.(ErrCode); ok {
		return e.Code == c
	}
	return false
}

// Of extracts the ErrCode of err, UnDefineErr when err is not a coded error.
func Of(err error) ErrCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c ErrCode
	if errors.As(err, &c) {
		return c
	}
	return UnDefineErr
}

// IsAuth reports whether err means the bearer credential is missing, invalid or expired.
func IsAuth(err error) bool {
	switch Of(err) {
	case UnLogin, InvalidToken:
		return true
	}
	return false
}
