// Package device 实现基于 BIP39 助记词的本机签名交互器
//
// 🔐 **本机设备因子源 (Device Factor Source)**
//
// 一份助记词对应一个因子源：
// - 因子源ID = blake2b(主公钥压缩编码)
// - 因子实例 = 按 CAP26 路径（全部硬化）派生出的 secp256k1 公钥
// - 签名 = 对载荷哈希的 ECDSA 签名（DER 编码）
//
// 交互器为 poly 形态：一次确认即可为同一请求中的多个本机因子源签名。
package device

import (
	"crypto/rand"
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicStrength 助记词强度（熵的位数）
type MnemonicStrength int

const (
	// Mnemonic12Words 12个助记词 (128 bits 熵)
	Mnemonic12Words MnemonicStrength = 128
	// Mnemonic24Words 24个助记词 (256 bits 熵)
	Mnemonic24Words MnemonicStrength = 256
)

// GenerateMnemonic 生成新助记词
func GenerateMnemonic(strength MnemonicStrength) (string, error) {
	switch strength {
	case Mnemonic12Words, Mnemonic24Words:
	default:
		return "", fmt.Errorf("invalid mnemonic strength: %d, must be 128 or 256", strength)
	}

	entropy := make([]byte, int(strength)/8)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic 校验助记词（词表与校验和）
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}
