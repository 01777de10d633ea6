package device

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"

	"github.com/weisyn/sigcollect/pkg/types"
)

// ErrInvalidMnemonic 助记词不合法
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// ErrPublicKeyMismatch 因子实例的公钥与本助记词派生结果不一致
var ErrPublicKeyMismatch = errors.New("factor instance public key does not match mnemonic")

// Keyring 一份助记词派生出的密钥环
type Keyring struct {
	id     types.FactorSourceID
	master *hdkeychain.ExtendedKey

	mu    sync.Mutex
	cache map[types.DerivationPath]*btcec.PrivateKey
}

// NewKeyring 由助记词创建密钥环；kind 通常为 Device 或 OffDeviceMnemonic
func NewKeyring(kind types.FactorSourceKind, mnemonic, passphrase string) (*Keyring, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("mnemonic to seed: %w", err)
	}
	// 只用于 HD 派生，网络参数不影响结果
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	pub, err := master.ECPubKey()
	if err != nil {
		return nil, fmt.Errorf("master public key: %w", err)
	}
	return &Keyring{
		id:     types.NewFactorSourceID(kind, types.HashOf(pub.SerializeCompressed())),
		master: master,
		cache:  make(map[types.DerivationPath]*btcec.PrivateKey),
	}, nil
}

// FactorSourceID 密钥环对应的因子源ID
func (k *Keyring) FactorSourceID() types.FactorSourceID {
	return k.id
}

func (k *Keyring) privateKey(path types.DerivationPath) (*btcec.PrivateKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if key, ok := k.cache[path]; ok {
		return key, nil
	}
	child := k.master
	var err error
	for _, index := range path.ToUint32Array() {
		child, err = child.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("derive %s: %w", path, err)
		}
	}
	key, err := child.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("private key at %s: %w", path, err)
	}
	k.cache[path] = key
	return key, nil
}

// DeriveInstance 派生指定路径的因子实例
func (k *Keyring) DeriveInstance(path types.DerivationPath) (types.HDFactorInstance, error) {
	key, err := k.privateKey(path)
	if err != nil {
		return types.HDFactorInstance{}, err
	}
	return types.HDFactorInstance{
		FactorSourceID: k.id,
		PublicKey:      key.PubKey().SerializeCompressed(),
		DerivationPath: path,
	}, nil
}

// Sign 为槽位签名，槽位的实例必须由本密钥环派生
func (k *Keyring) Sign(input types.HDSignatureInput) (types.HDSignature, error) {
	inst := input.OwnedFactorInstance.Instance
	if inst.FactorSourceID != k.id {
		return types.HDSignature{}, fmt.Errorf("instance belongs to %s, keyring is %s", inst.FactorSourceID, k.id)
	}
	key, err := k.privateKey(inst.DerivationPath)
	if err != nil {
		return types.HDSignature{}, err
	}
	if !bytes.Equal(key.PubKey().SerializeCompressed(), inst.PublicKey) {
		return types.HDSignature{}, fmt.Errorf("%w: %s", ErrPublicKeyMismatch, inst.DerivationPath)
	}
	hash := input.PayloadID.Hash
	return types.HDSignature{Input: input, Signature: ecdsa.Sign(key, hash[:]).Serialize()}, nil
}

// Close 清除缓存的私钥
func (k *Keyring) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for path, key := range k.cache {
		key.Zero()
		delete(k.cache, path)
	}
}

// Verify 用实例公钥校验签名
func Verify(sig types.HDSignature) bool {
	pub, err := btcec.ParsePubKey(sig.Input.OwnedFactorInstance.Instance.PublicKey)
	if err != nil {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sig.Signature)
	if err != nil {
		return false
	}
	hash := sig.Input.PayloadID.Hash
	return parsed.Verify(hash[:], pub)
}
