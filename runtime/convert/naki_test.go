package convert

import (
	"errors"
	"testing"

	"convlog/runtime/pai"
)

func TestDecodeNaki_Chi(t *testing.T) {
	n, err := DecodeNaki(0, "c275226")
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	chi, ok := n.(ChiNaki)
	if !ok {
		t.Fatalf("期望 chi，得到 %T", n)
	}
	if chi.Target != 3 {
		t.Fatalf("吃只能来自上家，期望 target=3，得到 %d", chi.Target)
	}
	if chi.Pai != pai.Pin7 {
		t.Fatalf("被吃的牌应为 7p，得到 %v", chi.Pai)
	}
	if chi.Consumed != [2]pai.Pai{pai.AkaPin5, pai.Pin6} {
		t.Fatalf("consumed 错误: %v", chi.Consumed)
	}
}

func TestDecodeNaki_Targets(t *testing.T) {
	cases := []struct {
		actor  uint8
		raw    string
		kind   NakiKind
		target uint8
		pai    pai.Pai
	}{
		{0, "p252525", KindPon, 3, pai.Pin5},
		{1, "12p1212", KindPon, 3, pai.Man2},
		{2, "3737p37", KindPon, 3, pai.Sou7},
		{3, "m39393939", KindDaiminkan, 2, pai.Sou9},
		{0, "26m262626", KindDaiminkan, 2, pai.Pin6},
		{1, "131313m13", KindDaiminkan, 2, pai.Man3},
		{2, "k16161616", KindKakan, 1, pai.Man6},
		{3, "41k414141", KindKakan, 1, pai.East},
		{0, "4646k4646", KindKakan, 1, pai.Hatsu},
	}
	for _, c := range cases {
		n, err := DecodeNaki(c.actor, c.raw)
		if err != nil {
			t.Fatalf("%s: 解码失败: %v", c.raw, err)
		}
		if n.Kind() != c.kind {
			t.Fatalf("%s: 期望 %v，得到 %v", c.raw, c.kind, n.Kind())
		}
		var target uint8
		var p pai.Pai
		switch v := n.(type) {
		case PonNaki:
			target, p = v.Target, v.Pai
		case DaiminkanNaki:
			target, p = v.Target, v.Pai
		case KakanNaki:
			target, p = v.Target, v.Pai
		}
		if target != c.target || p != c.pai {
			t.Fatalf("%s: 期望 target=%d pai=%v，得到 target=%d pai=%v", c.raw, c.target, c.pai, target, p)
		}
	}
}

func TestDecodeNaki_Ankan(t *testing.T) {
	n, err := DecodeNaki(2, "424242a42")
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	ankan := n.(AnkanNaki)
	if ankan.Pai != pai.South || ankan.Consumed != [3]pai.Pai{pai.South, pai.South, pai.South} {
		t.Fatalf("暗杠解码错误: %+v", ankan)
	}
}

func TestDecodeNaki_Reach(t *testing.T) {
	n, err := DecodeNaki(1, "r35")
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if r := n.(ReachNaki); r.Pai != pai.Sou5 || r.Tsumogiri {
		t.Fatalf("立直解码错误: %+v", r)
	}

	n, err = DecodeNaki(1, "r60")
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if r := n.(ReachNaki); !r.Pai.IsUnknown() || !r.Tsumogiri {
		t.Fatalf("摸切立直解码错误: %+v", r)
	}
}

func TestDecodeNaki_RoundTrip(t *testing.T) {
	raws := []string{
		"c275226",
		"p252525", "12p1212", "3737p37",
		"m39393939", "26m262626", "131313m13",
		"k16161616", "41k414141", "4646k4646",
		"424242a42",
		"r35", "r60",
	}
	for actor := uint8(0); actor < 4; actor++ {
		for _, raw := range raws {
			n, err := DecodeNaki(actor, raw)
			if err != nil {
				t.Fatalf("actor=%d %s: 解码失败: %v", actor, raw, err)
			}
			if got := n.Encode(); got != raw {
				t.Fatalf("actor=%d: %s 重新编码得到 %s", actor, raw, got)
			}
		}
	}
}

func TestDecodeNaki_Malformed(t *testing.T) {
	raws := []string{
		"p2525",      // 长度错误
		"c2752266",   // 长度错误
		"275226",     // 没有标记
		"c27p226",    // 两个标记
		"2p52525",    // 碰的标记位置错误
		"c275200",    // 未知牌
		"c275210",    // 不存在的牌
		"3939m3939",  // 大明杠的标记位置错误
		"42a424242",  // 暗杠的标记位置错误
		"3r5",        // 立直标记位置错误
		"x252525",    // 未知标记
		"k161616160", // 长度错误
	}
	for _, raw := range raws {
		n, err := DecodeNaki(0, raw)
		if err == nil {
			t.Fatalf("%s 应当解码失败，得到 %#v", raw, n)
		}
		if n != nil {
			t.Fatalf("%s 失败时不应返回值", raw)
		}
		if !errors.Is(err, ErrInvalidNaki) {
			t.Fatalf("%s: 错误类型应为 ErrInvalidNaki: %v", raw, err)
		}
		var nakiErr *NakiError
		if !errors.As(err, &nakiErr) || nakiErr.Raw != raw {
			t.Fatalf("%s: 错误中应携带原始字符串: %v", raw, err)
		}
	}
}

func TestDecodeNaki_InvalidPaiToken(t *testing.T) {
	_, err := DecodeNaki(0, "c275210")
	if !errors.Is(err, ErrInvalidPai) {
		t.Fatalf("应当包含 ErrInvalidPai: %v", err)
	}
}
