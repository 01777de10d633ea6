// Package hardware 实现硬件钱包类因子源的 mono 签名交互器
//
// 🔌 **硬件签名 (Hardware Signing)**
//
// 每次交互只面向一台设备：先确认连接的设备即请求的因子源，再把该因子源的全部槽位
// 交给设备签名。设备忙或连接中断时按配置重试；用户在设备上拒绝视为主动跳过，
// 重试耗尽或其他错误视为失败。单次签名受 SignTimeout 约束。
package hardware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

var (
	// ErrUserRejected 用户在设备上拒绝签名
	ErrUserRejected = errors.New("user rejected on device")
	// ErrDeviceBusy 设备正忙（可重试）
	ErrDeviceBusy = errors.New("device busy")
	// ErrDeviceDisconnected 设备未连接（可重试）
	ErrDeviceDisconnected = errors.New("device disconnected")
	// ErrWrongDevice 连接的设备不是请求的因子源
	ErrWrongDevice = errors.New("connected device does not match factor source")
)

// Client 硬件设备端口
type Client interface {
	// ConnectedFactorSource 当前连接设备的因子源ID
	ConnectedFactorSource(ctx context.Context, kind types.FactorSourceKind) (types.FactorSourceID, error)

	// Sign 在设备上为槽位签名，返回的签名与输入一一对应
	Sign(ctx context.Context, factorSourceID types.FactorSourceID, inputs []types.HDSignatureInput) ([][]byte, error)
}

// Config 交互器配置
type Config struct {
	RetryCount  int           // 重试次数（默认 3）
	RetryDelay  time.Duration // 重试延迟（默认 500ms）
	SignTimeout time.Duration // 单次交互超时，覆盖全部重试（默认 2min）
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		RetryCount:  3,
		RetryDelay:  500 * time.Millisecond,
		SignTimeout: 2 * time.Minute,
	}
}

// Interactor 硬件 mono 交互器
type Interactor struct {
	client      Client
	logger      log.Logger
	retryCount  int
	retryDelay  time.Duration
	signTimeout time.Duration
}

// NewInteractor 创建硬件交互器
func NewInteractor(config Config, client Client, logger log.Logger) (*Interactor, error) {
	if client == nil {
		return nil, fmt.Errorf("hardware client cannot be nil")
	}
	if config.RetryCount < 0 {
		return nil, fmt.Errorf("retry count cannot be negative: %d", config.RetryCount)
	}
	if config.SignTimeout <= 0 {
		config.SignTimeout = DefaultConfig().SignTimeout
	}
	if logger != nil {
		logger.Infof("硬件交互器初始化: retry=%d delay=%s timeout=%s", config.RetryCount, config.RetryDelay, config.SignTimeout)
	}
	return &Interactor{
		client:      client,
		logger:      logger,
		retryCount:  config.RetryCount,
		retryDelay:  config.RetryDelay,
		signTimeout: config.SignTimeout,
	}, nil
}

// SignMono 为单个因子源签名
//
// 只有父上下文被取消时返回错误；其余情况都以签名或忽略结果返回。
func (i *Interactor) SignMono(ctx context.Context, kind types.FactorSourceKind, input *types.PerFactorSourceInput) (types.FactorOutcome, error) {
	inputs := input.SignatureInputs()
	if i.logger != nil {
		i.logger.Debugf("开始硬件签名: %s slots=%d", input.FactorSourceID, len(inputs))
	}

	signCtx, cancel := context.WithTimeout(ctx, i.signTimeout)
	defer cancel()

	var raw [][]byte
	var lastErr error
	for attempt := 0; attempt <= i.retryCount; attempt++ {
		if attempt > 0 {
			if i.logger != nil {
				i.logger.Warnf("硬件签名重试 %d/%d: %s", attempt, i.retryCount, input.FactorSourceID)
			}
			if err := sleep(signCtx, i.retryDelay); err != nil {
				lastErr = err
				break
			}
		}

		raw, lastErr = i.attempt(signCtx, kind, input.FactorSourceID, inputs)
		if lastErr == nil || !isRetryableError(lastErr) {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return types.FactorOutcome{}, err
	}
	if errors.Is(lastErr, ErrUserRejected) {
		if i.logger != nil {
			i.logger.Infof("用户在设备上拒绝: %s", input.FactorSourceID)
		}
		return types.NeglectedOutcome(input.FactorSourceID, types.NeglectUserExplicitlySkipped), nil
	}
	if lastErr != nil {
		if i.logger != nil {
			i.logger.Errorf("硬件签名失败: %s %v", input.FactorSourceID, lastErr)
		}
		return types.NeglectedOutcome(input.FactorSourceID, types.NeglectFailure), nil
	}

	signatures := make([]types.HDSignature, 0, len(inputs))
	for idx, in := range inputs {
		signatures = append(signatures, types.HDSignature{Input: in, Signature: raw[idx]})
	}
	if i.logger != nil {
		i.logger.Infof("硬件签名成功: %s signatures=%d", input.FactorSourceID, len(signatures))
	}
	return types.SignedOutcome(input.FactorSourceID, signatures), nil
}

func (i *Interactor) attempt(ctx context.Context, kind types.FactorSourceKind, id types.FactorSourceID, inputs []types.HDSignatureInput) ([][]byte, error) {
	connected, err := i.client.ConnectedFactorSource(ctx, kind)
	if err != nil {
		return nil, err
	}
	if connected != id {
		return nil, fmt.Errorf("%w: want %s, connected %s", ErrWrongDevice, id, connected)
	}
	raw, err := i.client.Sign(ctx, id, inputs)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(inputs) {
		return nil, fmt.Errorf("device returned %d signatures for %d inputs", len(raw), len(inputs))
	}
	return raw, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isRetryableError 判断错误是否可重试
func isRetryableError(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrDeviceBusy), errors.Is(err, ErrDeviceDisconnected):
		return true
	case errors.Is(err, ErrUserRejected), errors.Is(err, ErrWrongDevice),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "connection reset", "temporary failure", "transport"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

var _ signing.MonoSignInteractor = (*Interactor)(nil)
