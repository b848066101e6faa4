package convert

import (
	"fmt"

	"convlog/runtime/mjai"
	"convlog/runtime/pai"
	"convlog/runtime/tenhou"
)

// projectTakes 摸牌序列 -> tsumo / chi / pon / daiminkan 事件
func projectTakes(actor uint8, takes []tenhou.ActionItem) ([]mjai.Event, error) {
	ret := make([]mjai.Event, 0, len(takes))
	for _, take := range takes {
		switch item := take.(type) {
		case tenhou.TsumogiriItem:
			return nil, ErrUnexpectedTsumogiri

		case tenhou.PaiItem:
			ret = append(ret, mjai.Tsumo{Actor: actor, Pai: item.Pai})

		case tenhou.NakiItem:
			n, err := DecodeNaki(actor, item.Raw)
			if err != nil {
				return nil, err
			}
			switch n.Kind() {
			case KindChi, KindPon, KindDaiminkan:
				ret = append(ret, nakiEvent(n))
			default:
				return nil, &NakiError{Raw: item.Raw, Err: fmt.Errorf("%v in take sequence", n.Kind())}
			}

		default:
			return nil, fmt.Errorf("unexpected take item %T", take)
		}
	}
	return ret, nil
}

// projectDiscards 切牌序列 -> dahai / kakan / ankan / reach+dahai 事件
// 摸切的牌在这里保持 Unknown，由 kyoku 转换时回填
func projectDiscards(actor uint8, discards []tenhou.ActionItem) ([]mjai.Event, error) {
	ret := make([]mjai.Event, 0, len(discards)+1)
	for _, discard := range discards {
		switch item := discard.(type) {
		case tenhou.PaiItem:
			ret = append(ret, mjai.Dahai{Actor: actor, Pai: item.Pai})

		case tenhou.TsumogiriItem:
			ret = append(ret, mjai.Dahai{Actor: actor, Pai: pai.Unknown, Tsumogiri: true})

		case tenhou.NakiItem:
			n, err := DecodeNaki(actor, item.Raw)
			if err != nil {
				return nil, err
			}
			switch v := n.(type) {
			case KakanNaki, AnkanNaki:
				ret = append(ret, nakiEvent(n))
			case ReachNaki:
				// 立直由两个事件组成：reach + 宣言牌
				ret = append(ret,
					mjai.Reach{Actor: actor},
					mjai.Dahai{Actor: actor, Pai: v.Pai, Tsumogiri: v.Tsumogiri},
				)
			default:
				return nil, &NakiError{Raw: item.Raw, Err: fmt.Errorf("%v in discard sequence", n.Kind())}
			}

		default:
			return nil, fmt.Errorf("unexpected discard item %T", discard)
		}
	}
	return ret, nil
}

// fillTsumogiri 用最近一次摸到的牌回填摸切
func fillTsumogiri(ev mjai.Event, lastTsumo pai.Pai) mjai.Event {
	if dahai, ok := ev.(mjai.Dahai); ok && dahai.Tsumogiri {
		dahai.Pai = lastTsumo
		return dahai
	}
	return ev
}

// nakiPriority 叫牌优先级：碰 / 明杠 高于 吃
const (
	priorityChi = iota + 1
	priorityPon
)

// callInfo 若事件是从他家叫牌，返回来源座位、被叫的牌与优先级
func callInfo(ev mjai.Event) (target uint8, p pai.Pai, priority int, ok bool) {
	switch e := ev.(type) {
	case mjai.Chi:
		return e.Target, e.Pai, priorityChi, true
	case mjai.Pon:
		return e.Target, e.Pai, priorityPon, true
	case mjai.Daiminkan:
		return e.Target, e.Pai, priorityPon, true
	default:
		return 0, pai.Unknown, 0, false
	}
}
