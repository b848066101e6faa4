package convert

import (
	"convlog/common/log"
	"convlog/runtime/mjai"
	"convlog/runtime/tenhou"
)

// Options 整个牌谱转换时的失败策略
type Options struct {
	// SkipBrokenKyoku 为 true 时，转换失败的局被整体跳过（不输出任何事件），否则整个牌谱失败
	SkipBrokenKyoku bool
}

// Result 转换结果；Skipped 记录被跳过的局及原因
type Result struct {
	Events  []mjai.Event
	Kyokus  []KyokuEvents
	Skipped []error
}

// KyokuEvents 单局的事件，从 start_kyoku 到 end_kyoku
type KyokuEvents struct {
	Meta   tenhou.KyokuMeta
	Events []mjai.Event
}

// TenhouToMjai 将 tenhou.net/6 牌谱转换为 mjai 事件流，任意一局失败则整体失败
func TenhouToMjai(tl *tenhou.Log) ([]mjai.Event, error) {
	res, err := TenhouToMjaiWithOptions(tl, Options{})
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}

func TenhouToMjaiWithOptions(tl *tenhou.Log, opts Options) (*Result, error) {
	res := &Result{
		Events: make([]mjai.Event, 0, 2+len(tl.Kyokus)*160),
		Kyokus: make([]KyokuEvents, 0, len(tl.Kyokus)),
	}

	res.Events = append(res.Events, mjai.StartGame{
		Names:      tl.Names,
		KyokuFirst: uint8(tl.GameLength),
		AkaFlag:    tl.HasAka,
	})

	for i := range tl.Kyokus {
		kyoku := &tl.Kyokus[i]
		events, err := convertKyoku(kyoku)
		if err != nil {
			if !opts.SkipBrokenKyoku {
				return nil, err
			}
			log.Warn("跳过无法转换的局, kyoku=%d honba=%d, err=%v", kyoku.Meta.KyokuNum, kyoku.Meta.Honba, err)
			res.Skipped = append(res.Skipped, err)
			continue
		}
		log.Debug("局转换完成, kyoku=%d honba=%d, events=%d", kyoku.Meta.KyokuNum, kyoku.Meta.Honba, len(events))
		res.Events = append(res.Events, events...)
		res.Kyokus = append(res.Kyokus, KyokuEvents{Meta: kyoku.Meta, Events: events})
	}

	res.Events = append(res.Events, mjai.EndGame{})
	return res, nil
}
