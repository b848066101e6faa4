package convert

import (
	"errors"
	"testing"

	"convlog/runtime/mjai"
	"convlog/runtime/pai"
	"convlog/runtime/tenhou"
)

func TestProjectTakes(t *testing.T) {
	events, err := projectTakes(1, []tenhou.ActionItem{
		p("1m"),
		n("c275226"),
		n("26m262626"),
	})
	if err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("事件数应与摸牌序列长度一致，得到 %d", len(events))
	}
	if events[0] != (mjai.Tsumo{Actor: 1, Pai: pai.Man1}) {
		t.Fatalf("tsumo 错误: %#v", events[0])
	}
	if chi, ok := events[1].(mjai.Chi); !ok || chi.Target != 0 || chi.Actor != 1 {
		t.Fatalf("chi 错误: %#v", events[1])
	}
	if kan, ok := events[2].(mjai.Daiminkan); !ok || kan.Target != 3 {
		t.Fatalf("daiminkan 错误: %#v", events[2])
	}
}

func TestProjectTakes_Tsumogiri(t *testing.T) {
	_, err := projectTakes(0, []tenhou.ActionItem{p("1m"), tsumogiri})
	if !errors.Is(err, ErrUnexpectedTsumogiri) {
		t.Fatalf("摸牌序列中的摸切应当报错: %v", err)
	}
}

func TestProjectTakes_DiscardOnlyNaki(t *testing.T) {
	for _, raw := range []string{"r35", "424242a42", "k16161616"} {
		if _, err := projectTakes(0, []tenhou.ActionItem{n(raw)}); !errors.Is(err, ErrInvalidNaki) {
			t.Fatalf("%s 不应出现在摸牌序列: %v", raw, err)
		}
	}
}

func TestProjectDiscards(t *testing.T) {
	discards := []tenhou.ActionItem{
		p("1m"),
		tsumogiri,
		n("r60"),
		n("424242a42"),
		n("r35"),
	}
	events, err := projectDiscards(2, discards)
	if err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	// 每个立直展开为两个事件
	if len(events) != len(discards)+2 {
		t.Fatalf("事件数错误: %d", len(events))
	}

	want := []mjai.Event{
		mjai.Dahai{Actor: 2, Pai: pai.Man1},
		mjai.Dahai{Actor: 2, Pai: pai.Unknown, Tsumogiri: true},
		mjai.Reach{Actor: 2},
		mjai.Dahai{Actor: 2, Pai: pai.Unknown, Tsumogiri: true},
		mjai.Ankan{Actor: 2, Consumed: [4]pai.Pai{pai.South, pai.South, pai.South, pai.South}},
		mjai.Reach{Actor: 2},
		mjai.Dahai{Actor: 2, Pai: pai.Sou5},
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("第 %d 个事件: 期望 %#v，得到 %#v", i, want[i], events[i])
		}
	}
}

func TestProjectDiscards_TakeOnlyNaki(t *testing.T) {
	for _, raw := range []string{"c275226", "p252525", "m39393939"} {
		if _, err := projectDiscards(0, []tenhou.ActionItem{n(raw)}); !errors.Is(err, ErrInvalidNaki) {
			t.Fatalf("%s 不应出现在切牌序列: %v", raw, err)
		}
	}
}

func TestFillTsumogiri(t *testing.T) {
	ev := fillTsumogiri(mjai.Dahai{Actor: 0, Tsumogiri: true}, pai.Chun)
	if ev.(mjai.Dahai).Pai != pai.Chun {
		t.Fatalf("摸切未回填: %#v", ev)
	}
	ev = fillTsumogiri(mjai.Dahai{Actor: 0, Pai: pai.East}, pai.Chun)
	if ev.(mjai.Dahai).Pai != pai.East {
		t.Fatalf("手切不应被回填: %#v", ev)
	}
}
