package convert

import (
	"convlog/runtime/mjai"
	"convlog/runtime/pai"
	"convlog/runtime/tenhou"
)

var tsumogiri = tenhou.TsumogiriItem{}

func p(s string) tenhou.ActionItem {
	return tenhou.PaiItem{Pai: pai.MustParse(s)}
}

func n(raw string) tenhou.ActionItem {
	return tenhou.NakiItem{Raw: raw}
}

func pais(ss ...string) []pai.Pai {
	ret := make([]pai.Pai, 0, len(ss))
	for _, s := range ss {
		ret = append(ret, pai.MustParse(s))
	}
	return ret
}

func deltas(d0, d1, d2, d3 int32) *[4]int32 {
	return &[4]int32{d0, d1, d2, d3}
}

// simpleKyoku 四家各摸一张切一张后流局
func simpleKyoku() tenhou.Kyoku {
	kyoku := tenhou.Kyoku{
		Meta:           tenhou.KyokuMeta{KyokuNum: 0},
		Scoreboard:     [4]int32{25000, 25000, 25000, 25000},
		DoraIndicators: pais("E"),
		EndStatus:      tenhou.Ryukyoku{Reason: "流局"},
	}
	kyoku.ActionTables[0] = tenhou.ActionTable{Takes: []tenhou.ActionItem{p("1m")}, Discards: []tenhou.ActionItem{p("1m")}}
	kyoku.ActionTables[1] = tenhou.ActionTable{Takes: []tenhou.ActionItem{p("2m")}, Discards: []tenhou.ActionItem{tsumogiri}}
	kyoku.ActionTables[2] = tenhou.ActionTable{Takes: []tenhou.ActionItem{p("3m")}, Discards: []tenhou.ActionItem{p("9p")}}
	kyoku.ActionTables[3] = tenhou.ActionTable{Takes: []tenhou.ActionItem{p("4m")}, Discards: []tenhou.ActionItem{p("4m")}}
	return kyoku
}

// kanKyoku 覆盖 碰、立直、大明杠、加杠、暗杠 与荣和
func kanKyoku() tenhou.Kyoku {
	kyoku := tenhou.Kyoku{
		Meta:           tenhou.KyokuMeta{KyokuNum: 0, Honba: 1, Kyotaku: 1},
		Scoreboard:     [4]int32{25000, 25000, 25000, 24000},
		DoraIndicators: pais("E", "S", "W", "N", "P"),
		EndStatus: tenhou.Hora{Details: []tenhou.HoraDetail{
			{Who: 3, Target: 0, ScoreDeltas: [4]int32{-8300, 0, 0, 9300}},
		}},
	}
	kyoku.ActionTables[0] = tenhou.ActionTable{
		Takes:    []tenhou.ActionItem{p("1m"), p("3m"), p("1s"), p("9s")},
		Discards: []tenhou.ActionItem{p("5p"), p("7s"), n("414141a41"), p("9s")},
	}
	kyoku.ActionTables[1] = tenhou.ActionTable{
		Takes:    []tenhou.ActionItem{n("m37373737"), p("4p")},
		Discards: []tenhou.ActionItem{tenhou.PaiItem{Pai: pai.Unknown}, tsumogiri},
	}
	kyoku.ActionTables[2] = tenhou.ActionTable{
		Takes:    []tenhou.ActionItem{n("25p2525"), p("6m"), p("8m")},
		Discards: []tenhou.ActionItem{p("9m"), n("25k252525"), tsumogiri},
	}
	kyoku.ActionTables[3] = tenhou.ActionTable{
		Takes:    []tenhou.ActionItem{p("2s"), p("7p")},
		Discards: []tenhou.ActionItem{n("r60"), tsumogiri},
	}
	return kyoku
}

func countTakeEvents(events []mjai.Event, actor uint8) int {
	count := 0
	for _, ev := range events {
		switch e := ev.(type) {
		case mjai.Tsumo:
			if e.Actor == actor {
				count++
			}
		case mjai.Chi:
			if e.Actor == actor {
				count++
			}
		case mjai.Pon:
			if e.Actor == actor {
				count++
			}
		case mjai.Daiminkan:
			if e.Actor == actor {
				count++
			}
		}
	}
	return count
}

func countDiscardEvents(events []mjai.Event, actor uint8) int {
	count := 0
	for _, ev := range events {
		switch e := ev.(type) {
		case mjai.Dahai:
			if e.Actor == actor {
				count++
			}
		case mjai.Reach:
			if e.Actor == actor {
				count++
			}
		case mjai.Kakan:
			if e.Actor == actor {
				count++
			}
		case mjai.Ankan:
			if e.Actor == actor {
				count++
			}
		}
	}
	return count
}
