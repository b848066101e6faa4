package mjai

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
)

var ErrUnknownEvent = errors.New("unknown mjai event")

// Marshal 序列化为单行 json，type 字段放在最前
func Marshal(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, ErrUnknownEvent
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(body)+24))
	buf.WriteString(`{"type":`)
	typ, _ := json.Marshal(ev.Type())
	buf.Write(typ)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// Unmarshal 根据 type 字段解析单行事件
func Unmarshal(line []byte) (Event, error) {
	typ := gjson.GetBytes(line, "type")
	if !typ.Exists() {
		return nil, fmt.Errorf("%w: missing type in %s", ErrUnknownEvent, line)
	}

	switch typ.String() {
	case TypeStartGame:
		return decodeAs[StartGame](line)
	case TypeStartKyoku:
		return decodeAs[StartKyoku](line)
	case TypeTsumo:
		return decodeAs[Tsumo](line)
	case TypeDahai:
		return decodeAs[Dahai](line)
	case TypeChi:
		return decodeAs[Chi](line)
	case TypePon:
		return decodeAs[Pon](line)
	case TypeDaiminkan:
		return decodeAs[Daiminkan](line)
	case TypeKakan:
		return decodeAs[Kakan](line)
	case TypeAnkan:
		return decodeAs[Ankan](line)
	case TypeDora:
		return decodeAs[Dora](line)
	case TypeReach:
		return decodeAs[Reach](line)
	case TypeReachAccepted:
		return decodeAs[ReachAccepted](line)
	case TypeHora:
		return decodeAs[Hora](line)
	case TypeRyukyoku:
		return decodeAs[Ryukyoku](line)
	case TypeEndKyoku:
		return EndKyoku{}, nil
	case TypeEndGame:
		return EndGame{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, typ.String())
	}
}

func decodeAs[T Event](line []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Writer 按行写出事件（json lines）
type Writer struct {
	w     *bufio.Writer
	count int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Write(ev Event) error {
	line, err := Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(line); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.count++
	return nil
}

func (w *Writer) WriteAll(events []Event) error {
	for _, ev := range events {
		if err := w.Write(ev); err != nil {
			return err
		}
	}
	return w.Flush()
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Count 已写出的事件数
func (w *Writer) Count() int {
	return w.count
}

// MarshalLines 将事件序列化为 json lines 文本
func MarshalLines(events []Event) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteAll(events); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadLines 解析 json lines 文本，空行忽略
func ReadLines(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		ev, err := Unmarshal(line)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, scanner.Err()
}
