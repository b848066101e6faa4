package convert

import (
	"fmt"
	"strconv"
	"strings"

	"convlog/runtime/mjai"
	"convlog/runtime/pai"
)

// NakiKind 副露字符串中的标记字符
type NakiKind byte

const (
	KindChi       NakiKind = 'c'
	KindPon       NakiKind = 'p'
	KindDaiminkan NakiKind = 'm'
	KindKakan     NakiKind = 'k'
	KindAnkan     NakiKind = 'a'
	KindReach     NakiKind = 'r'
)

// 立直宣言牌为摸切时的编码
const reachTsumogiriToken = "60"

func (k NakiKind) String() string {
	switch k {
	case KindChi:
		return "chi"
	case KindPon:
		return "pon"
	case KindDaiminkan:
		return "daiminkan"
	case KindKakan:
		return "kakan"
	case KindAnkan:
		return "ankan"
	case KindReach:
		return "reach"
	default:
		return fmt.Sprintf("unknown(%q)", byte(k))
	}
}

// Naki 解码后的副露字符串
//
// tenhou 的副露字符串由两位数字的牌编码拼接而成，中间插入一个标记字符，
// 标记字符的位置同时表示来源座位（上家 / 对家 / 下家）。
type Naki interface {
	Kind() NakiKind
	// Encode 还原为 tenhou 副露字符串
	Encode() string
	naki()
}

// ChiNaki 吃，只能来自上家。"c275226" => 从上家吃 7p，手中出 5pr 6p
type ChiNaki struct {
	Actor    uint8
	Target   uint8
	Pai      pai.Pai
	Consumed [2]pai.Pai
}

// PonNaki 碰。"p252525" 上家，"12p1212" 对家，"3737p37" 下家
type PonNaki struct {
	Actor    uint8
	Target   uint8
	Pai      pai.Pai
	Consumed [2]pai.Pai
}

// DaiminkanNaki 大明杠。"m39393939" 上家，"26m262626" 对家，"131313m13" 下家
type DaiminkanNaki struct {
	Actor    uint8
	Target   uint8
	Pai      pai.Pai
	Consumed [3]pai.Pai
}

// KakanNaki 加杠，Target 为之前碰牌的来源座位。
// "k16161616" 上家，"41k414141" 对家，"4646k4646" 下家
type KakanNaki struct {
	Actor    uint8
	Target   uint8
	Pai      pai.Pai
	Consumed [3]pai.Pai
}

// AnkanNaki 暗杠，标记固定在下标 6。"424242a42"
type AnkanNaki struct {
	Actor    uint8
	Pai      pai.Pai
	Consumed [3]pai.Pai
}

// ReachNaki 立直宣言。"r35" 切 5s 立直，"r60" 摸切立直（Pai 为 Unknown）
type ReachNaki struct {
	Actor     uint8
	Pai       pai.Pai
	Tsumogiri bool
}

func (ChiNaki) Kind() NakiKind       { return KindChi }
func (PonNaki) Kind() NakiKind       { return KindPon }
func (DaiminkanNaki) Kind() NakiKind { return KindDaiminkan }
func (KakanNaki) Kind() NakiKind     { return KindKakan }
func (AnkanNaki) Kind() NakiKind     { return KindAnkan }
func (ReachNaki) Kind() NakiKind     { return KindReach }

func (ChiNaki) naki()       {}
func (PonNaki) naki()       {}
func (DaiminkanNaki) naki() {}
func (KakanNaki) naki()     {}
func (AnkanNaki) naki()     {}
func (ReachNaki) naki()     {}

// 座位偏移：上家 +3，对家 +2，下家 +1
const (
	offsetKamicha uint8 = 3
	offsetToimen  uint8 = 2
	offsetShimo   uint8 = 1
)

// 各类副露中，标记下标与来源偏移的对应关系
var (
	ponMarkerOffsets = map[int]uint8{0: offsetKamicha, 2: offsetToimen, 4: offsetShimo}
	minkanMarkers    = map[int]uint8{0: offsetKamicha, 2: offsetToimen, 6: offsetShimo}
	kakanMarkers     = map[int]uint8{0: offsetKamicha, 2: offsetToimen, 4: offsetShimo}
)

func relative(actor, offset uint8) uint8 {
	return (actor + offset) % 4
}

func offsetOf(actor, target uint8) uint8 {
	return (target + 4 - actor%4) % 4
}

// DecodeNaki 解码副露字符串
func DecodeNaki(actor uint8, s string) (Naki, error) {
	marker, idx, err := locateMarker(s)
	if err != nil {
		return nil, &NakiError{Raw: s, Err: err}
	}

	var n Naki
	switch NakiKind(marker) {
	case KindChi:
		n, err = decodeChi(actor, s, idx)
	case KindPon:
		n, err = decodePon(actor, s, idx)
	case KindDaiminkan:
		n, err = decodeDaiminkan(actor, s, idx)
	case KindKakan:
		n, err = decodeKakan(actor, s, idx)
	case KindAnkan:
		n, err = decodeAnkan(actor, s, idx)
	case KindReach:
		n, err = decodeReach(actor, s, idx)
	default:
		err = fmt.Errorf("unknown marker %q", marker)
	}
	if err != nil {
		return nil, &NakiError{Raw: s, Err: err}
	}
	return n, nil
}

// locateMarker 除标记外必须全为数字，且恰好有一个标记字符
func locateMarker(s string) (byte, int, error) {
	idx := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			continue
		}
		if idx >= 0 {
			return 0, 0, fmt.Errorf("ambiguous marker at %d and %d", idx, i)
		}
		idx = i
	}
	if idx < 0 {
		return 0, 0, fmt.Errorf("missing marker")
	}
	return s[idx], idx, nil
}

// tokensAround 去掉标记后按两位切分；第一个返回值为紧跟标记的牌
func tokensAround(s string, idx int) (string, []string) {
	rest := s[:idx] + s[idx+1:]
	tokens := make([]string, 0, len(rest)/2)
	for i := 0; i+2 <= len(rest); i += 2 {
		tokens = append(tokens, rest[i:i+2])
	}
	// 标记之后的第一个 token 是被叫的牌
	calledAt := idx / 2
	called := tokens[calledAt]
	others := make([]string, 0, len(tokens)-1)
	others = append(others, tokens[:calledAt]...)
	others = append(others, tokens[calledAt+1:]...)
	return called, others
}

func checkLen(s string, want int) error {
	if len(s) != want {
		return fmt.Errorf("length %d, want %d", len(s), want)
	}
	return nil
}

func decodeCalled(s string, idx int, consumed []pai.Pai) (pai.Pai, error) {
	called, others := tokensAround(s, idx)
	p, err := paiFromToken(called)
	if err != nil {
		return pai.Unknown, err
	}
	for i := range consumed {
		if consumed[i], err = paiFromToken(others[i]); err != nil {
			return pai.Unknown, err
		}
	}
	return p, nil
}

func decodeChi(actor uint8, s string, idx int) (Naki, error) {
	if err := checkLen(s, 7); err != nil {
		return nil, err
	}
	if idx != 0 {
		return nil, fmt.Errorf("chi marker at %d", idx)
	}
	n := ChiNaki{Actor: actor, Target: relative(actor, offsetKamicha)}
	var err error
	if n.Pai, err = decodeCalled(s, idx, n.Consumed[:]); err != nil {
		return nil, err
	}
	return n, nil
}

func decodePon(actor uint8, s string, idx int) (Naki, error) {
	if err := checkLen(s, 7); err != nil {
		return nil, err
	}
	offset, ok := ponMarkerOffsets[idx]
	if !ok {
		return nil, fmt.Errorf("pon marker at %d", idx)
	}
	n := PonNaki{Actor: actor, Target: relative(actor, offset)}
	var err error
	if n.Pai, err = decodeCalled(s, idx, n.Consumed[:]); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeDaiminkan(actor uint8, s string, idx int) (Naki, error) {
	if err := checkLen(s, 9); err != nil {
		return nil, err
	}
	offset, ok := minkanMarkers[idx]
	if !ok {
		return nil, fmt.Errorf("daiminkan marker at %d", idx)
	}
	n := DaiminkanNaki{Actor: actor, Target: relative(actor, offset)}
	var err error
	if n.Pai, err = decodeCalled(s, idx, n.Consumed[:]); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeKakan(actor uint8, s string, idx int) (Naki, error) {
	if err := checkLen(s, 9); err != nil {
		return nil, err
	}
	offset, ok := kakanMarkers[idx]
	if !ok {
		return nil, fmt.Errorf("kakan marker at %d", idx)
	}
	n := KakanNaki{Actor: actor, Target: relative(actor, offset)}
	var err error
	if n.Pai, err = decodeCalled(s, idx, n.Consumed[:]); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeAnkan(actor uint8, s string, idx int) (Naki, error) {
	if err := checkLen(s, 9); err != nil {
		return nil, err
	}
	if idx != 6 {
		return nil, fmt.Errorf("ankan marker at %d", idx)
	}
	n := AnkanNaki{Actor: actor}
	var err error
	if n.Pai, err = decodeCalled(s, idx, n.Consumed[:]); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeReach(actor uint8, s string, idx int) (Naki, error) {
	if err := checkLen(s, 3); err != nil {
		return nil, err
	}
	if idx != 0 {
		return nil, fmt.Errorf("reach marker at %d", idx)
	}
	token := s[1:3]
	if token == reachTsumogiriToken {
		return ReachNaki{Actor: actor, Pai: pai.Unknown, Tsumogiri: true}, nil
	}
	p, err := paiFromToken(token)
	if err != nil {
		return nil, err
	}
	return ReachNaki{Actor: actor, Pai: p}, nil
}

// paiFromToken 两位数字的牌编码，副露中不允许出现未知牌
func paiFromToken(token string) (pai.Pai, error) {
	if len(token) != 2 {
		return pai.Unknown, &PaiError{Raw: token}
	}
	code, err := strconv.ParseUint(token, 10, 8)
	if err != nil {
		return pai.Unknown, &PaiError{Raw: token}
	}
	p, err := pai.FromU8(uint8(code))
	if err != nil || p.IsUnknown() {
		return pai.Unknown, &PaiError{Raw: token}
	}
	return p, nil
}

func token(p pai.Pai) string {
	return fmt.Sprintf("%02d", p.U8())
}

// splice 在 consumed 中的第 at 个位置插入 标记+被叫牌
func splice(kind NakiKind, called pai.Pai, consumed []pai.Pai, at int) string {
	var b strings.Builder
	for i, c := range consumed {
		if i == at {
			b.WriteByte(byte(kind))
			b.WriteString(token(called))
		}
		b.WriteString(token(c))
	}
	if at >= len(consumed) {
		b.WriteByte(byte(kind))
		b.WriteString(token(called))
	}
	return b.String()
}

func markerSlot(markers map[int]uint8, offset uint8) int {
	for idx, o := range markers {
		if o == offset {
			return idx / 2
		}
	}
	return 0
}

func (n ChiNaki) Encode() string {
	return splice(KindChi, n.Pai, n.Consumed[:], 0)
}

func (n PonNaki) Encode() string {
	slot := markerSlot(ponMarkerOffsets, offsetOf(n.Actor, n.Target))
	return splice(KindPon, n.Pai, n.Consumed[:], slot)
}

func (n DaiminkanNaki) Encode() string {
	slot := markerSlot(minkanMarkers, offsetOf(n.Actor, n.Target))
	return splice(KindDaiminkan, n.Pai, n.Consumed[:], slot)
}

func (n KakanNaki) Encode() string {
	slot := markerSlot(kakanMarkers, offsetOf(n.Actor, n.Target))
	return splice(KindKakan, n.Pai, n.Consumed[:], slot)
}

func (n AnkanNaki) Encode() string {
	return splice(KindAnkan, n.Pai, n.Consumed[:], 3)
}

func (n ReachNaki) Encode() string {
	if n.Tsumogiri {
		return string(KindReach) + reachTsumogiriToken
	}
	return string(KindReach) + token(n.Pai)
}

// nakiEvent 副露转换为 mjai 事件，立直由 projection 单独展开
func nakiEvent(n Naki) mjai.Event {
	switch v := n.(type) {
	case ChiNaki:
		return mjai.Chi{Actor: v.Actor, Target: v.Target, Pai: v.Pai, Consumed: v.Consumed}
	case PonNaki:
		return mjai.Pon{Actor: v.Actor, Target: v.Target, Pai: v.Pai, Consumed: v.Consumed}
	case DaiminkanNaki:
		return mjai.Daiminkan{Actor: v.Actor, Target: v.Target, Pai: v.Pai, Consumed: v.Consumed}
	case KakanNaki:
		return mjai.Kakan{Actor: v.Actor, Pai: v.Pai, Consumed: v.Consumed}
	case AnkanNaki:
		return mjai.Ankan{
			Actor:    v.Actor,
			Consumed: [4]pai.Pai{v.Consumed[0], v.Consumed[1], v.Consumed[2], v.Pai},
		}
	default:
		return nil
	}
}
