package transfer

import (
	"errors"

	"convlog/core/domain/repository"
	"convlog/runtime/convert"
	"convlog/runtime/pai"
	"convlog/runtime/tenhou"
)

var (
	ErrMongodb = errors.New("mongodb error happen")
	ErrRedis   = errors.New("redis error happen")
)

// 消息相关错误
var (
	ErrInvalidRoute     = errors.New("invalid route")
	ErrHandlerNotFound  = errors.New("handler not found")
	ErrInvalidMessage   = errors.New("invalid message")
	ErrMessageMarshal   = errors.New("message marshal error")
	ErrMessageUnmarshal = errors.New("message unmarshal error")
	ErrArgument         = errors.New("argument error")
	ErrService          = errors.New("service error")
	ErrRateLimited      = errors.New("rate limited")
	ErrNodeClosing      = errors.New("node is closing")
)

// 远程通信相关错误
var (
	ErrNotConnected  = errors.New("not connected")
	ErrRemoteTimeout = errors.New("remote timeout")
)

// Code 响应码，写在 ServicePacket.Code 中
type Code int

const (
	CodeOK Code = iota
	CodeInvalidArgument
	CodeNotFound
	CodeUnavailable
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeNotFound:
		return "not_found"
	case CodeUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// MapError 把服务层错误映射为响应码
func MapError(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrArgument),
		errors.Is(err, ErrMessageUnmarshal),
		errors.Is(err, tenhou.ErrInvalidLog),
		errors.Is(err, convert.ErrInvalidNaki),
		errors.Is(err, convert.ErrInvalidPai),
		errors.Is(err, pai.ErrInvalidPai),
		errors.Is(err, convert.ErrInsufficientTakes),
		errors.Is(err, convert.ErrInsufficientDiscards),
		errors.Is(err, convert.ErrInsufficientDoraIndicators),
		errors.Is(err, convert.ErrUnexpectedTsumogiri):
		return CodeInvalidArgument
	case errors.Is(err, repository.ErrConversionNotFound),
		errors.Is(err, repository.ErrConversionIncomplete),
		errors.Is(err, ErrHandlerNotFound):
		return CodeNotFound
	case errors.Is(err, ErrRateLimited), errors.Is(err, ErrNodeClosing):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
