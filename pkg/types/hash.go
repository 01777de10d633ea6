package types

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Hash32 32字节 blake2b-256 摘要
//
// 用作载荷ID（交易意图哈希等）与因子源ID的主体部分。
type Hash32 [32]byte

// HashOf 计算 blake2b-256 摘要
func HashOf(data ...[]byte) Hash32 {
	h, _ := blake2b.New256(nil) // 无密钥时不会返回错误
	for _, d := range data {
		h.Write(d)
	}
	var out Hash32
	copy(out[:], h.Sum(nil))
	return out
}

// Hash32FromHex 从 hex 字符串解析摘要
func Hash32FromHex(s string) (Hash32, error) {
	var out Hash32
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(raw) != len(out) {
		return out, fmt.Errorf("invalid hash length: expected %d bytes, got %d", len(out), len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// Hex 返回小写 hex 编码
func (h Hash32) Hex() string {
	return hex.EncodeToString(h[:])
}

// Short 返回前8个hex字符，仅用于日志
func (h Hash32) Short() string {
	return h.Hex()[:8]
}

// Compare 字节序比较
func (h Hash32) Compare(other Hash32) int {
	return bytes.Compare(h[:], other[:])
}

// IsZero 是否为零值
func (h Hash32) IsZero() bool {
	return h == Hash32{}
}

// MarshalText 以 hex 编码
func (h Hash32) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText 从 hex 解码
func (h *Hash32) UnmarshalText(text []byte) error {
	parsed, err := Hash32FromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
