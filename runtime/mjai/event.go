package mjai

import "convlog/runtime/pai"

// 事件类型，对应 mjai 协议中的 type 字段
const (
	TypeStartGame     = "start_game"
	TypeStartKyoku    = "start_kyoku"
	TypeTsumo         = "tsumo"
	TypeDahai         = "dahai"
	TypeChi           = "chi"
	TypePon           = "pon"
	TypeDaiminkan     = "daiminkan"
	TypeKakan         = "kakan"
	TypeAnkan         = "ankan"
	TypeDora          = "dora"
	TypeReach         = "reach"
	TypeReachAccepted = "reach_accepted"
	TypeHora          = "hora"
	TypeRyukyoku      = "ryukyoku"
	TypeEndKyoku      = "end_kyoku"
	TypeEndGame       = "end_game"
)

// Event mjai 事件。实现仅限本包中的类型，新增事件类型时需要同步修改所有 type switch
type Event interface {
	Type() string
	mjaiEvent()
}

type StartGame struct {
	Names      [4]string `json:"names"`
	KyokuFirst uint8     `json:"kyoku_first"`
	AkaFlag    bool      `json:"aka_flag"`
}

type StartKyoku struct {
	Bakaze     pai.Pai        `json:"bakaze"`
	DoraMarker pai.Pai        `json:"dora_marker"`
	Kyoku      uint8          `json:"kyoku"` // 1-4
	Honba      uint8          `json:"honba"`
	Kyotaku    uint8          `json:"kyotaku"`
	Oya        uint8          `json:"oya"`
	Scores     [4]int32       `json:"scores"`
	Tehais     [4][13]pai.Pai `json:"tehais"`
}

type Tsumo struct {
	Actor uint8   `json:"actor"`
	Pai   pai.Pai `json:"pai"`
}

// Dahai 切牌。Tsumogiri 且 Pai 为 Unknown 时表示尚未用摸到的牌回填
type Dahai struct {
	Actor     uint8   `json:"actor"`
	Pai       pai.Pai `json:"pai"`
	Tsumogiri bool    `json:"tsumogiri"`
}

type Chi struct {
	Actor    uint8      `json:"actor"`
	Target   uint8      `json:"target"`
	Pai      pai.Pai    `json:"pai"`
	Consumed [2]pai.Pai `json:"consumed"`
}

type Pon struct {
	Actor    uint8      `json:"actor"`
	Target   uint8      `json:"target"`
	Pai      pai.Pai    `json:"pai"`
	Consumed [2]pai.Pai `json:"consumed"`
}

type Daiminkan struct {
	Actor    uint8      `json:"actor"`
	Target   uint8      `json:"target"`
	Pai      pai.Pai    `json:"pai"`
	Consumed [3]pai.Pai `json:"consumed"`
}

type Kakan struct {
	Actor    uint8      `json:"actor"`
	Pai      pai.Pai    `json:"pai"`
	Consumed [3]pai.Pai `json:"consumed"`
}

type Ankan struct {
	Actor    uint8      `json:"actor"`
	Consumed [4]pai.Pai `json:"consumed"`
}

type Dora struct {
	DoraMarker pai.Pai `json:"dora_marker"`
}

type Reach struct {
	Actor uint8 `json:"actor"`
}

type ReachAccepted struct {
	Actor uint8 `json:"actor"`
}

type Hora struct {
	Actor  uint8     `json:"actor"`
	Target uint8     `json:"target"`
	Deltas *[4]int32 `json:"deltas,omitempty"`
}

type Ryukyoku struct {
	Deltas *[4]int32 `json:"deltas,omitempty"`
}

type EndKyoku struct{}

type EndGame struct{}

func (StartGame) Type() string     { return TypeStartGame }
func (StartKyoku) Type() string    { return TypeStartKyoku }
func (Tsumo) Type() string         { return TypeTsumo }
func (Dahai) Type() string         { return TypeDahai }
func (Chi) Type() string           { return TypeChi }
func (Pon) Type() string           { return TypePon }
func (Daiminkan) Type() string     { return TypeDaiminkan }
func (Kakan) Type() string         { return TypeKakan }
func (Ankan) Type() string         { return TypeAnkan }
func (Dora) Type() string          { return TypeDora }
func (Reach) Type() string         { return TypeReach }
func (ReachAccepted) Type() string { return TypeReachAccepted }
func (Hora) Type() string          { return TypeHora }
func (Ryukyoku) Type() string      { return TypeRyukyoku }
func (EndKyoku) Type() string      { return TypeEndKyoku }
func (EndGame) Type() string       { return TypeEndGame }

func (StartGame) mjaiEvent()     {}
func (StartKyoku) mjaiEvent()    {}
func (Tsumo) mjaiEvent()         {}
func (Dahai) mjaiEvent()         {}
func (Chi) mjaiEvent()           {}
func (Pon) mjaiEvent()           {}
func (Daiminkan) mjaiEvent()     {}
func (Kakan) mjaiEvent()         {}
func (Ankan) mjaiEvent()         {}
func (Dora) mjaiEvent()          {}
func (Reach) mjaiEvent()         {}
func (ReachAccepted) mjaiEvent() {}
func (Hora) mjaiEvent()          {}
func (Ryukyoku) mjaiEvent()      {}
func (EndKyoku) mjaiEvent()      {}
func (EndGame) mjaiEvent()       {}

// ActorOf 返回事件的行动者座位，系统事件返回 -1
func ActorOf(ev Event) int {
	switch e := ev.(type) {
	case Tsumo:
		return int(e.Actor)
	case Dahai:
		return int(e.Actor)
	case Chi:
		return int(e.Actor)
	case Pon:
		return int(e.Actor)
	case Daiminkan:
		return int(e.Actor)
	case Kakan:
		return int(e.Actor)
	case Ankan:
		return int(e.Actor)
	case Reach:
		return int(e.Actor)
	case ReachAccepted:
		return int(e.Actor)
	case Hora:
		return int(e.Actor)
	case StartGame, StartKyoku, Dora, Ryukyoku, EndKyoku, EndGame:
		return -1
	default:
		return -1
	}
}
