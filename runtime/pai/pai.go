package pai

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Pai 牌，数值与 tenhou.net/6 的编码一致，字符串形式与 mjai 一致
type Pai uint8

const (
	Unknown Pai = 0

	// 万子
	Man1 Pai = iota + 10
	Man2
	Man3
	Man4
	Man5
	Man6
	Man7
	Man8
	Man9
)

const (
	// 筒子
	Pin1 Pai = iota + 21
	Pin2
	Pin3
	Pin4
	Pin5
	Pin6
	Pin7
	Pin8
	Pin9
)

const (
	// 索子
	Sou1 Pai = iota + 31
	Sou2
	Sou3
	Sou4
	Sou5
	Sou6
	Sou7
	Sou8
	Sou9
)

const (
	// 字牌：东南西北 白发中
	East Pai = iota + 41
	South
	West
	North
	Haku
	Hatsu
	Chun
)

const (
	// 赤宝牌
	AkaMan5 Pai = iota + 51
	AkaPin5
	AkaSou5
)

var ErrInvalidPai = errors.New("invalid pai")

// mjaiStrings 下标即 tenhou 编码，"?" 表示该编码不存在
var mjaiStrings = [...]string{
	"?", "?", "?", "?", "?", "?", "?", "?", "?", "?", // 0~9
	"?", "1m", "2m", "3m", "4m", "5m", "6m", "7m", "8m", "9m", // 10~19
	"?", "1p", "2p", "3p", "4p", "5p", "6p", "7p", "8p", "9p", // 20~29
	"?", "1s", "2s", "3s", "4s", "5s", "6s", "7s", "8s", "9s", // 30~39
	"?", "E", "S", "W", "N", "P", "F", "C", "?", "?", // 40~49
	"?", "5mr", "5pr", "5sr", // 50~53
}

// 进程启动时构建一次，之后只读
var mjaiStringToPai = buildStringTable()

func buildStringTable() map[string]Pai {
	m := make(map[string]Pai, 1+9*3+7+3)
	for code := range mjaiStrings {
		if p, ok := valid(uint8(code)); ok {
			m[mjaiStrings[code]] = p
		}
	}
	if len(m) != 1+9*3+7+3 {
		panic(fmt.Sprintf("pai 字符串表大小异常: %d", len(m)))
	}
	return m
}

func valid(code uint8) (Pai, bool) {
	switch {
	case code == 0,
		code >= 11 && code <= 19,
		code >= 21 && code <= 29,
		code >= 31 && code <= 39,
		code >= 41 && code <= 47,
		code >= 51 && code <= 53:
		return Pai(code), true
	}
	return Unknown, false
}

// FromU8 解析 tenhou 数值编码
func FromU8(code uint8) (Pai, error) {
	p, ok := valid(code)
	if !ok {
		return Unknown, fmt.Errorf("%w code %d", ErrInvalidPai, code)
	}
	return p, nil
}

// Parse 解析 mjai 字符串
func Parse(s string) (Pai, error) {
	if p, ok := mjaiStringToPai[s]; ok {
		return p, nil
	}
	return Unknown, fmt.Errorf("%w string %q", ErrInvalidPai, s)
}

// MustParse 仅用于测试和常量表
func MustParse(s string) Pai {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pai) U8() uint8 {
	return uint8(p)
}

func (p Pai) String() string {
	return mjaiStrings[int(p)%len(mjaiStrings)]
}

func (p Pai) IsUnknown() bool {
	return p == Unknown
}

func (p Pai) IsAka() bool {
	return p >= AkaMan5 && p <= AkaSou5
}

// Deaka 赤五转为普通五
func (p Pai) Deaka() Pai {
	switch p {
	case AkaMan5:
		return Man5
	case AkaPin5:
		return Pin5
	case AkaSou5:
		return Sou5
	default:
		return p
	}
}

func (p Pai) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Pai) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
