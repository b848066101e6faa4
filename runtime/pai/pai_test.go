package pai

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPai_RoundTrip(t *testing.T) {
	count := 0
	for code := 0; code < 256; code++ {
		p, err := FromU8(uint8(code))
		if err != nil {
			continue
		}
		count++
		if p.U8() != uint8(code) {
			t.Fatalf("code %d: U8 返回 %d", code, p.U8())
		}
		back, err := Parse(p.String())
		if err != nil {
			t.Fatalf("code %d: 解析 %q 失败: %v", code, p.String(), err)
		}
		if back != p {
			t.Fatalf("code %d: 往返得到 %v", code, back)
		}
	}
	if count != 1+9*3+7+3 {
		t.Fatalf("合法编码数量应为 38，得到 %d", count)
	}
}

func TestPai_Strings(t *testing.T) {
	cases := map[Pai]string{
		Man1:    "1m",
		Pin7:    "7p",
		Sou9:    "9s",
		East:    "E",
		Haku:    "P",
		Hatsu:   "F",
		Chun:    "C",
		AkaPin5: "5pr",
		Unknown: "?",
	}
	for p, want := range cases {
		if got := p.String(); got != want {
			t.Errorf("%d: 期望 %q，得到 %q", p.U8(), want, got)
		}
	}
}

func TestPai_Invalid(t *testing.T) {
	for _, code := range []uint8{1, 10, 20, 30, 40, 48, 50, 54, 60, 255} {
		if _, err := FromU8(code); !errors.Is(err, ErrInvalidPai) {
			t.Errorf("code %d 应当失败, err=%v", code, err)
		}
	}
	for _, s := range []string{"", "0m", "10m", "5zr", "e", "5m ", "??"} {
		if _, err := Parse(s); !errors.Is(err, ErrInvalidPai) {
			t.Errorf("%q 应当失败, err=%v", s, err)
		}
	}
}

func TestPai_JSON(t *testing.T) {
	data, err := json.Marshal([]Pai{Man5, AkaSou5, North})
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	if string(data) != `["5m","5sr","N"]` {
		t.Fatalf("序列化结果错误: %s", data)
	}

	var back []Pai
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	if len(back) != 3 || back[1] != AkaSou5 {
		t.Fatalf("反序列化结果错误: %v", back)
	}
}

func TestPai_Deaka(t *testing.T) {
	if AkaMan5.Deaka() != Man5 || !AkaMan5.IsAka() {
		t.Fatalf("赤五万处理错误")
	}
	if East.Deaka() != East || East.IsAka() {
		t.Fatalf("字牌不应变化")
	}
}
