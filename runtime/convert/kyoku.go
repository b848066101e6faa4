package convert

import (
	"convlog/runtime/mjai"
	"convlog/runtime/pai"
	"convlog/runtime/tenhou"
)

// seatCursor 单个座位事件序列上的读位置，peek 只做下标检查
type seatCursor struct {
	events []mjai.Event
	pos    int
}

func (c *seatCursor) peek() (mjai.Event, bool) {
	if c.pos >= len(c.events) {
		return nil, false
	}
	return c.events[c.pos], true
}

func (c *seatCursor) next() (mjai.Event, bool) {
	ev, ok := c.peek()
	if ok {
		c.pos++
	}
	return ev, ok
}

func (c *seatCursor) exhausted() bool {
	return c.pos >= len(c.events)
}

// kyokuConverter 单局的重建状态机，每局新建，不跨局共享
type kyokuConverter struct {
	kyoku  *tenhou.Kyoku
	events []mjai.Event

	takes    [4]seatCursor
	discards [4]seatCursor
	doraPos  int

	actor       uint8
	reachActor  int // 等待 reach_accepted 的座位，-1 表示无
	lastTsumo   pai.Pai
	lastDahai   pai.Pai
	needNewDora bool // 明杠 / 加杠后，下一次切牌后翻开新宝牌
}

func newKyokuConverter(kyoku *tenhou.Kyoku) (*kyokuConverter, error) {
	kc := &kyokuConverter{
		kyoku:      kyoku,
		events:     make([]mjai.Event, 0, 160),
		actor:      kyoku.Meta.Oya(),
		reachActor: -1,
	}
	for i := 0; i < 4; i++ {
		table := &kyoku.ActionTables[i]
		takes, err := projectTakes(uint8(i), table.Takes)
		if err != nil {
			return nil, kc.wrap(i, err)
		}
		discards, err := projectDiscards(uint8(i), table.Discards)
		if err != nil {
			return nil, kc.wrap(i, err)
		}
		kc.takes[i] = seatCursor{events: takes}
		kc.discards[i] = seatCursor{events: discards}
	}
	return kc, nil
}

// convertKyoku 将一局的四家摸切序列合并为按时间排序的 mjai 事件流
func convertKyoku(kyoku *tenhou.Kyoku) ([]mjai.Event, error) {
	kc, err := newKyokuConverter(kyoku)
	if err != nil {
		return nil, err
	}
	if err := kc.run(); err != nil {
		return nil, err
	}
	return kc.events, nil
}

func (kc *kyokuConverter) wrap(actor int, err error) error {
	return &KyokuError{
		Kyoku: kc.kyoku.Meta.KyokuNum,
		Honba: kc.kyoku.Meta.Honba,
		Actor: actor,
		Err:   err,
	}
}

func (kc *kyokuConverter) emit(ev mjai.Event) {
	kc.events = append(kc.events, ev)
}

func (kc *kyokuConverter) nextDora() (pai.Pai, error) {
	if kc.doraPos >= len(kc.kyoku.DoraIndicators) {
		return pai.Unknown, kc.wrap(-1, ErrInsufficientDoraIndicators)
	}
	p := kc.kyoku.DoraIndicators[kc.doraPos]
	kc.doraPos++
	return p, nil
}

func (kc *kyokuConverter) emitDora() error {
	p, err := kc.nextDora()
	if err != nil {
		return err
	}
	kc.emit(mjai.Dora{DoraMarker: p})
	return nil
}

func (kc *kyokuConverter) nextDiscard() (mjai.Event, error) {
	ev, ok := kc.discards[kc.actor].next()
	if !ok {
		return nil, kc.wrap(int(kc.actor), ErrInsufficientDiscards)
	}
	ev = fillTsumogiri(ev, kc.lastTsumo)
	if dahai, ok := ev.(mjai.Dahai); ok {
		kc.lastDahai = dahai.Pai
	}
	return ev, nil
}

func (kc *kyokuConverter) startKyoku() error {
	meta := kc.kyoku.Meta
	dora, err := kc.nextDora()
	if err != nil {
		return err
	}

	start := mjai.StartKyoku{
		Bakaze:     bakazeOf(meta.KyokuNum),
		DoraMarker: dora,
		Kyoku:      meta.KyokuNum%4 + 1,
		Honba:      meta.Honba,
		Kyotaku:    meta.Kyotaku,
		Oya:        meta.Oya(),
		Scores:     kc.kyoku.Scoreboard,
	}
	for i := 0; i < 4; i++ {
		start.Tehais[i] = kc.kyoku.ActionTables[i].Haipai
	}
	kc.emit(start)
	return nil
}

func bakazeOf(kyokuNum uint8) pai.Pai {
	switch kyokuNum / 4 {
	case 0:
		return pai.East
	case 1:
		return pai.South
	case 2:
		return pai.West
	default:
		return pai.North
	}
}

func (kc *kyokuConverter) run() error {
	if err := kc.startKyoku(); err != nil {
		return err
	}

	for {
		take, ok := kc.takes[kc.actor].next()
		if !ok {
			return kc.wrap(int(kc.actor), ErrInsufficientTakes)
		}

		// 记录摸到的牌，用于回填摸切
		if tsumo, ok := take.(mjai.Tsumo); ok {
			kc.lastTsumo = tsumo.Pai
		}

		// 立直宣言一巡后成立
		if kc.reachActor >= 0 {
			kc.emit(mjai.ReachAccepted{Actor: uint8(kc.reachActor)})
			kc.reachActor = -1
		}

		// 大明杠：跳过对应的切牌位，同一玩家直接岭上摸牌
		if _, ok := take.(mjai.Daiminkan); ok {
			kc.emit(take)
			kc.discards[kc.actor].next()
			kc.needNewDora = true
			continue
		}

		kc.emit(take)

		// 没有切牌了：自摸或九种九牌
		if kc.discards[kc.actor].exhausted() {
			kc.endKyoku()
			return nil
		}

		discard, err := kc.nextDiscard()
		if err != nil {
			return err
		}
		kc.emit(discard)

		// 之前的明杠 / 加杠在切牌后翻宝牌
		if kc.needNewDora {
			if err := kc.emitDora(); err != nil {
				return err
			}
			kc.needNewDora = false
		}

		// 立直 = reach + 宣言牌
		if _, ok := discard.(mjai.Reach); ok {
			kc.reachActor = int(kc.actor)
			dahai, err := kc.nextDiscard()
			if err != nil {
				return err
			}
			kc.emit(dahai)
		}

		// 没有人还能摸牌：荣和或流局
		if kc.allTakesExhausted() {
			kc.endKyoku()
			return nil
		}

		switch discard.(type) {
		case mjai.Ankan:
			// 暗杠立即翻宝牌，且不会被叫
			if err := kc.emitDora(); err != nil {
				return err
			}
			continue
		case mjai.Kakan:
			kc.needNewDora = true
			continue
		}

		kc.actor = kc.nextActor()
	}
}

func (kc *kyokuConverter) allTakesExhausted() bool {
	for i := range kc.takes {
		if !kc.takes[i].exhausted() {
			return false
		}
	}
	return true
}

// nextActor 若有人叫了刚切出的牌，轮到他；同时有吃和碰时碰优先
//
// 吃和碰同一张牌时碰一定先发生，否则碰的玩家需要先摸一次牌才能再从同一家碰。
// 唯一的例外是吃之前有人先碰了别的牌，这种情况在 tenhou.net/6 的格式中无法区分。
func (kc *kyokuConverter) nextActor() uint8 {
	best, bestPriority := -1, 0
	for i := uint8(0); i < 4; i++ {
		if i == kc.actor {
			continue
		}
		pending, ok := kc.takes[i].peek()
		if !ok {
			continue
		}
		target, p, priority, ok := callInfo(pending)
		if !ok || target != kc.actor || p != kc.lastDahai {
			continue
		}
		if priority > bestPriority {
			best, bestPriority = int(i), priority
		}
	}
	if best < 0 {
		return (kc.actor + 1) % 4
	}
	return uint8(best)
}

func (kc *kyokuConverter) endKyoku() {
	switch status := kc.kyoku.EndStatus.(type) {
	case tenhou.Hora:
		for _, detail := range status.Details {
			deltas := detail.ScoreDeltas
			kc.emit(mjai.Hora{Actor: detail.Who, Target: detail.Target, Deltas: &deltas})
		}
	case tenhou.Ryukyoku:
		deltas := status.ScoreDeltas
		kc.emit(mjai.Ryukyoku{Deltas: &deltas})
	}
	kc.emit(mjai.EndKyoku{})
}
