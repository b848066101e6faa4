package convert

import (
	"errors"
	"testing"

	"convlog/runtime/mjai"
	"convlog/runtime/tenhou"
)

const sampleLog = `{
  "title": ["", ""],
  "name": ["A", "B", "C", "D"],
  "rule": {"disp": "般南喰赤", "aka": 1},
  "log": [
    [[0, 0, 0], [25000, 25000, 25000, 25000], [41], [],
     [11,12,13,14,15,16,17,18,19,21,22,23,24], [11], [11],
     [31,32,33,34,35,36,37,38,39,41,42,43,44], [12], [60],
     [21,22,23,24,25,26,27,28,29,45,46,47,51], [13], [29],
     [11,11,11,12,12,12,13,13,13,14,14,14,15], [14], [14],
     ["流局", [0, 0, 0, 0]]],
    [[1, 0, 0], [25000, 25000, 25000, 25000], [42], [],
     [11,12,13,14,15,16,17,18,19,21,22,23,24], [11], [11],
     [31,32,33,34,35,36,37,38,39,41,42,43,44], [], [],
     [21,22,23,24,25,26,27,28,29,45,46,47,51], [13], [29],
     [11,11,11,12,12,12,13,13,13,14,14,14,15], [14], [14],
     ["流局", [0, 0, 0, 0]]]
  ]
}`

func parseSample(t *testing.T) *tenhou.Log {
	t.Helper()
	tl, err := tenhou.Parse([]byte(sampleLog))
	if err != nil {
		t.Fatalf("解析牌谱失败: %v", err)
	}
	return tl
}

func TestTenhouToMjai_AbortOnBrokenKyoku(t *testing.T) {
	tl := parseSample(t)
	_, err := TenhouToMjai(tl)
	if !errors.Is(err, ErrInsufficientTakes) {
		t.Fatalf("第二局庄家没有摸牌，期望 ErrInsufficientTakes，得到 %v", err)
	}
}

func TestTenhouToMjai_SkipBrokenKyoku(t *testing.T) {
	tl := parseSample(t)
	res, err := TenhouToMjaiWithOptions(tl, Options{SkipBrokenKyoku: true})
	if err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if len(res.Skipped) != 1 || len(res.Kyokus) != 1 {
		t.Fatalf("应跳过一局、保留一局: skipped=%d kept=%d", len(res.Skipped), len(res.Kyokus))
	}
	// start_game + 一局 11 个事件 + end_game
	if len(res.Events) != 13 {
		t.Fatalf("事件数错误: %d", len(res.Events))
	}

	start, ok := res.Events[0].(mjai.StartGame)
	if !ok {
		t.Fatalf("第一个事件应为 start_game: %#v", res.Events[0])
	}
	if start.Names != [4]string{"A", "B", "C", "D"} || !start.AkaFlag || start.KyokuFirst != uint8(tenhou.Hanchan) {
		t.Fatalf("start_game 字段错误: %#v", start)
	}
	if _, ok := res.Events[len(res.Events)-1].(mjai.EndGame); !ok {
		t.Fatalf("最后一个事件应为 end_game")
	}
}

func TestTenhouToMjai_Lines(t *testing.T) {
	tl := parseSample(t)
	tl.Kyokus = tl.Kyokus[:1]

	events, err := TenhouToMjai(tl)
	if err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	data, err := mjai.MarshalLines(events)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	lines := splitLines(string(data))
	if len(lines) != len(events) {
		t.Fatalf("行数错误: %d", len(lines))
	}
	if lines[5] != `{"type":"dahai","actor":1,"pai":"2m","tsumogiri":true}` {
		t.Fatalf("摸切行错误: %s", lines[5])
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return lines
}
