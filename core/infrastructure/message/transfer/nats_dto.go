package transfer

import "encoding/json"

type MessageType uint8

const (
	Request MessageType = iota + 1
	Response
)

// ServicePacket 节点之间通信的信封，Route 决定由哪个 handler 处理
type ServicePacket struct {
	RequestID   string          `json:"requestId"`
	Type        MessageType     `json:"type"`
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Route       string          `json:"route"`
	Data        json.RawMessage `json:"data,omitempty"`
	Code        Code            `json:"code"`
	Error       string          `json:"error,omitempty"`
}

type ConvertReq struct {
	RequestID       string          `json:"-"`                         // 由信封中的 RequestID 填充
	Log             json.RawMessage `json:"log"`                       // tenhou.net/6 原始 json
	SkipBrokenKyoku *bool           `json:"skipBrokenKyoku,omitempty"` // 为空时使用节点配置
	Persist         bool            `json:"persist"`                   // 是否写入 mongo
}

type ConvertResp struct {
	RecordID string   `json:"recordId,omitempty"`
	Lines    string   `json:"lines"`
	Kyokus   int      `json:"kyokus"`
	Events   int      `json:"events"`
	Skipped  []string `json:"skipped,omitempty"`
	Cached   bool     `json:"cached"`
}

type ShowReq struct {
	RecordID string `json:"recordId"`
}
