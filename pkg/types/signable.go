package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// SignableKind 可签名载荷的类别
type SignableKind uint8

const (
	SignableKindTransactionIntent SignableKind = iota
	SignableKindSubintent
	SignableKindAuthIntent
)

// String 返回类别名称
func (k SignableKind) String() string {
	switch k {
	case SignableKindTransactionIntent:
		return "txid"
	case SignableKindSubintent:
		return "subtxid"
	case SignableKindAuthIntent:
		return "auth"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// PayloadID 载荷ID（内容哈希），在一次收集中唯一标识一个可签名载荷
type PayloadID struct {
	Kind SignableKind `json:"kind"`
	Hash Hash32       `json:"hash"`
}

// String 返回 kind_hex 形式
func (id PayloadID) String() string {
	return id.Kind.String() + "_" + id.Hash.Hex()
}

// ParsePayloadID 解析 kind_hex 形式
func ParsePayloadID(s string) (PayloadID, error) {
	idx := strings.LastIndex(s, "_")
	if idx < 0 {
		return PayloadID{}, fmt.Errorf("invalid payload id: %q", s)
	}
	var kind SignableKind
	switch s[:idx] {
	case "txid":
		kind = SignableKindTransactionIntent
	case "subtxid":
		kind = SignableKindSubintent
	case "auth":
		kind = SignableKindAuthIntent
	default:
		return PayloadID{}, fmt.Errorf("invalid payload id kind: %q", s[:idx])
	}
	hash, err := Hash32FromHex(s[idx+1:])
	if err != nil {
		return PayloadID{}, fmt.Errorf("invalid payload id %q: %w", s, err)
	}
	return PayloadID{Kind: kind, Hash: hash}, nil
}

// MarshalText 以字符串编码
func (id PayloadID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText 从字符串解码
func (id *PayloadID) UnmarshalText(text []byte) error {
	parsed, err := ParsePayloadID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Compare 载荷ID排序
func (id PayloadID) Compare(other PayloadID) int {
	if id.Kind != other.Kind {
		if id.Kind < other.Kind {
			return -1
		}
		return 1
	}
	return id.Hash.Compare(other.Hash)
}

// Signable 可签名载荷（和类型）
//
// 仅有 TransactionIntent、Subintent、AuthIntent 三个变体，协议逻辑对载荷类别无感知。
type Signable interface {
	// ID 载荷ID
	ID() PayloadID
	// Kind 载荷类别
	Kind() SignableKind

	isSignable()
}

// ManifestSummary 清单静态分析结果中与授权相关的部分
type ManifestSummary struct {
	AccountsRequiringAuth []EntityAddress `json:"accounts_requiring_auth"`
	PersonasRequiringAuth []EntityAddress `json:"personas_requiring_auth"`
}

// Manifest 交易清单
type Manifest struct {
	Instructions string          `json:"instructions"`
	Summary      ManifestSummary `json:"summary"`
}

// TransactionIntent 交易意图
type TransactionIntent struct {
	NetworkID  uint32   `json:"network_id"`
	StartEpoch uint64   `json:"start_epoch"`
	EndEpoch   uint64   `json:"end_epoch"`
	Nonce      uint32   `json:"nonce"`
	Message    string   `json:"message"`
	Manifest   Manifest `json:"manifest"`
}

// ID 交易意图哈希
func (t *TransactionIntent) ID() PayloadID {
	enc := newCanonicalEncoder(SignableKindTransactionIntent)
	enc.u32(t.NetworkID)
	enc.u64(t.StartEpoch)
	enc.u64(t.EndEpoch)
	enc.u32(t.Nonce)
	enc.str(t.Message)
	enc.manifest(t.Manifest)
	return PayloadID{Kind: SignableKindTransactionIntent, Hash: enc.hash()}
}

// Kind 载荷类别
func (t *TransactionIntent) Kind() SignableKind { return SignableKindTransactionIntent }

func (t *TransactionIntent) isSignable() {}

// Subintent 子意图（由其他交易嵌套使用）
type Subintent struct {
	NetworkID uint32    `json:"network_id"`
	Nonce     uint32    `json:"nonce"`
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message"`
	Manifest  Manifest  `json:"manifest"`
}

// ID 子意图哈希
func (s *Subintent) ID() PayloadID {
	enc := newCanonicalEncoder(SignableKindSubintent)
	enc.u32(s.NetworkID)
	enc.u32(s.Nonce)
	enc.u64(uint64(s.ExpiresAt.Unix()))
	enc.str(s.Message)
	enc.manifest(s.Manifest)
	return PayloadID{Kind: SignableKindSubintent, Hash: enc.hash()}
}

// Kind 载荷类别
func (s *Subintent) Kind() SignableKind { return SignableKindSubintent }

func (s *Subintent) isSignable() {}

// AuthIntent 链下身份证明挑战（ROLA）
type AuthIntent struct {
	NetworkID      uint32          `json:"network_id"`
	Challenge      Hash32          `json:"challenge"`
	Origin         string          `json:"origin"`
	DappDefinition string          `json:"dapp_definition"`
	EntitiesToSign []EntityAddress `json:"entities_to_sign"`
}

// ID 身份证明意图哈希
func (a *AuthIntent) ID() PayloadID {
	enc := newCanonicalEncoder(SignableKindAuthIntent)
	enc.u32(a.NetworkID)
	enc.raw(a.Challenge[:])
	enc.str(a.Origin)
	enc.str(a.DappDefinition)
	enc.addresses(a.EntitiesToSign)
	return PayloadID{Kind: SignableKindAuthIntent, Hash: enc.hash()}
}

// Kind 载荷类别
func (a *AuthIntent) Kind() SignableKind { return SignableKindAuthIntent }

func (a *AuthIntent) isSignable() {}

// canonicalEncoder 计算载荷哈希用的确定性编码
type canonicalEncoder struct {
	buf bytes.Buffer
}

func newCanonicalEncoder(kind SignableKind) *canonicalEncoder {
	enc := &canonicalEncoder{}
	enc.buf.WriteString("sigcollect/")
	enc.buf.WriteByte(byte(kind))
	return enc
}

func (e *canonicalEncoder) u32(v uint32) {
	_ = binary.Write(&e.buf, binary.BigEndian, v)
}

func (e *canonicalEncoder) u64(v uint64) {
	_ = binary.Write(&e.buf, binary.BigEndian, v)
}

func (e *canonicalEncoder) raw(b []byte) {
	e.u32(uint32(len(b)))
	e.buf.Write(b)
}

func (e *canonicalEncoder) str(s string) {
	e.raw([]byte(s))
}

func (e *canonicalEncoder) addresses(addrs []EntityAddress) {
	e.u32(uint32(len(addrs)))
	for _, a := range addrs {
		e.str(a.String())
	}
}

func (e *canonicalEncoder) manifest(m Manifest) {
	e.str(m.Instructions)
	e.addresses(m.Summary.AccountsRequiringAuth)
	e.addresses(m.Summary.PersonasRequiringAuth)
}

func (e *canonicalEncoder) hash() Hash32 {
	return HashOf(e.buf.Bytes())
}
