package mjai

import (
	"bytes"
	"strings"
	"testing"

	"convlog/runtime/pai"
)

func TestMarshal_TypeFirst(t *testing.T) {
	line, err := Marshal(Dahai{Actor: 2, Pai: pai.AkaPin5, Tsumogiri: true})
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	want := `{"type":"dahai","actor":2,"pai":"5pr","tsumogiri":true}`
	if string(line) != want {
		t.Fatalf("期望 %s，得到 %s", want, line)
	}
}

func TestMarshal_EmptyBody(t *testing.T) {
	line, err := Marshal(EndKyoku{})
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	if string(line) != `{"type":"end_kyoku"}` {
		t.Fatalf("结果错误: %s", line)
	}
}

func TestMarshal_HoraDeltas(t *testing.T) {
	line, _ := Marshal(Ryukyoku{})
	if string(line) != `{"type":"ryukyoku"}` {
		t.Fatalf("无分数变动时不应输出 deltas: %s", line)
	}

	deltas := [4]int32{-1000, 1000, 0, 0}
	line, _ = Marshal(Hora{Actor: 1, Target: 0, Deltas: &deltas})
	if !strings.Contains(string(line), `"deltas":[-1000,1000,0,0]`) {
		t.Fatalf("deltas 缺失: %s", line)
	}
}

func TestWriter_ReadLines(t *testing.T) {
	events := []Event{
		StartGame{Names: [4]string{"a", "b", "c", "d"}, AkaFlag: true},
		Chi{Actor: 0, Target: 3, Pai: pai.Pin7, Consumed: [2]pai.Pai{pai.AkaPin5, pai.Pin6}},
		Ankan{Actor: 1, Consumed: [4]pai.Pai{pai.South, pai.South, pai.South, pai.South}},
		ReachAccepted{Actor: 3},
		EndGame{},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteAll(events); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	if w.Count() != len(events) {
		t.Fatalf("计数错误: %d", w.Count())
	}
	if n := strings.Count(buf.String(), "\n"); n != len(events) {
		t.Fatalf("应当每个事件一行，得到 %d 行", n)
	}

	back, err := ReadLines(&buf)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(back) != len(events) {
		t.Fatalf("事件数不一致: %d", len(back))
	}
	chi, ok := back[1].(Chi)
	if !ok || chi != events[1] {
		t.Fatalf("chi 事件不一致: %#v", back[1])
	}
	if _, ok := back[4].(EndGame); !ok {
		t.Fatalf("最后一个事件应为 end_game: %#v", back[4])
	}
}

func TestUnmarshal_Unknown(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"type":"nukidora","actor":0}`)); err == nil {
		t.Fatalf("未知类型应当报错")
	}
	if _, err := Unmarshal([]byte(`{"actor":0}`)); err == nil {
		t.Fatalf("缺少 type 应当报错")
	}
}

func TestActorOf(t *testing.T) {
	if ActorOf(Tsumo{Actor: 3}) != 3 {
		t.Fatalf("tsumo actor 错误")
	}
	if ActorOf(Dora{DoraMarker: pai.East}) != -1 {
		t.Fatalf("dora 应为系统事件")
	}
}
