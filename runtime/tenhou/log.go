package tenhou

import "convlog/runtime/pai"

// GameLength 对局长度，数值即 mjai start_game 的 kyoku_first
type GameLength uint8

const (
	Hanchan GameLength = 0 // 东南战
	Tonpuu  GameLength = 4 // 东风战
)

// Log tenhou.net/6 牌谱（已解析）
type Log struct {
	Names      [4]string
	GameLength GameLength
	HasAka     bool
	Kyokus     []Kyoku
}

// Kyoku 一局的全部数据
type Kyoku struct {
	Meta           KyokuMeta
	Scoreboard     [4]int32
	DoraIndicators []pai.Pai
	UraIndicators  []pai.Pai
	ActionTables   [4]ActionTable
	EndStatus      EndStatus
}

type KyokuMeta struct {
	KyokuNum uint8 // 0 = 东一局，4 = 南一局
	Honba    uint8
	Kyotaku  uint8 // 供托立直棒
}

// Oya 庄家座位
func (m KyokuMeta) Oya() uint8 {
	return m.KyokuNum % 4
}

// ActionTable 单个座位的配牌、摸牌序列、切牌序列
type ActionTable struct {
	Haipai   [13]pai.Pai
	Takes    []ActionItem
	Discards []ActionItem
}

// ActionItem 摸牌/切牌序列中的一项
//
//	PaiItem       具体的牌
//	TsumogiriItem 摸切（只会出现在切牌序列）
//	NakiItem      副露/杠/立直字符串
type ActionItem interface {
	actionItem()
}

type PaiItem struct {
	Pai pai.Pai
}

type TsumogiriItem struct{}

type NakiItem struct {
	Raw string
}

func (PaiItem) actionItem()       {}
func (TsumogiriItem) actionItem() {}
func (NakiItem) actionItem()      {}

// EndStatus 一局的结束方式，和了或流局
type EndStatus interface {
	endStatus()
}

type Hora struct {
	Details []HoraDetail
}

type HoraDetail struct {
	Who         uint8
	Target      uint8
	ScoreDeltas [4]int32
}

type Ryukyoku struct {
	Reason      string
	ScoreDeltas [4]int32
}

func (Hora) endStatus()     {}
func (Ryukyoku) endStatus() {}
