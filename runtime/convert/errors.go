package convert

import (
	"errors"
	"fmt"
)

// 解码错误
var (
	ErrInvalidNaki = errors.New("invalid naki string")
	ErrInvalidPai  = errors.New("invalid pai string")
)

// 数据不足
var (
	ErrInsufficientTakes          = errors.New("insufficient take sequence size")
	ErrInsufficientDiscards       = errors.New("insufficient discard sequence size")
	ErrInsufficientDoraIndicators = errors.New("insufficient dora indicators")
)

// ErrUnexpectedTsumogiri 摸切只能出现在切牌序列中
var ErrUnexpectedTsumogiri = errors.New("tsumogiri should not exist in take table")

// NakiError 副露字符串无法解码，Raw 为原始字符串
type NakiError struct {
	Raw string
	Err error
}

func (e *NakiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %q: %v", ErrInvalidNaki, e.Raw, e.Err)
	}
	return fmt.Sprintf("%v: %q", ErrInvalidNaki, e.Raw)
}

func (e *NakiError) Is(target error) bool {
	return target == ErrInvalidNaki
}

func (e *NakiError) Unwrap() error {
	return e.Err
}

// PaiError 两位数字的牌编码无法解析
type PaiError struct {
	Raw string
}

func (e *PaiError) Error() string {
	return fmt.Sprintf("%v: %q", ErrInvalidPai, e.Raw)
}

func (e *PaiError) Is(target error) bool {
	return target == ErrInvalidPai
}

// KyokuError 携带局数、本场、座位信息，Actor 为 -1 表示与座位无关
type KyokuError struct {
	Kyoku uint8
	Honba uint8
	Actor int
	Err   error
}

func (e *KyokuError) Error() string {
	if e.Actor < 0 {
		return fmt.Sprintf("%v: at kyoku=%d honba=%d", e.Err, e.Kyoku, e.Honba)
	}
	return fmt.Sprintf("%v: at kyoku=%d honba=%d for actor=%d", e.Err, e.Kyoku, e.Honba, e.Actor)
}

func (e *KyokuError) Unwrap() error {
	return e.Err
}
