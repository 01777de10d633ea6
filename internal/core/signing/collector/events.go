package collector

import (
	"time"

	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/sigcollect/pkg/types"
)

// 进度事件主题
const (
	EventRunStarted         event.EventType = "signing.run.started"
	EventGroupDispatched    event.EventType = "signing.group.dispatched"
	EventFactorNeglected    event.EventType = "signing.factor.neglected"
	EventTransactionInvalid event.EventType = "signing.transaction.invalid"
	EventRunFinished        event.EventType = "signing.run.finished"
)

// RunStarted 运行开始
type RunStarted struct {
	RunID     string
	Purpose   string
	Payloads  int
	KindOrder []types.FactorSourceKind
	StartedAt time.Time
}

// GroupDispatched 分组请求已派发
type GroupDispatched struct {
	RunID          string
	Kind           types.FactorSourceKind
	Mode           Mode
	FactorSources  []types.FactorSourceID
	SignatureSlots int
}

// FactorNeglected 因子源被忽略
type FactorNeglected struct {
	RunID          string
	FactorSourceID types.FactorSourceID
	Reason         types.NeglectFactorReason
	Payloads       []types.PayloadID
}

// TransactionInvalid 载荷已不可能有效
type TransactionInvalid struct {
	RunID     string
	PayloadID types.PayloadID
	Entities  []types.EntityAddress
}

// RunFinished 运行结束
type RunFinished struct {
	RunID         string
	Successful    int
	Failed        int
	Neglected     int
	FinishedEarly bool
	Duration      time.Duration
}

// publisher 事件发布；未注入事件总线时静默跳过
type publisher struct {
	bus event.EventBus
}

func (p publisher) publish(topic event.EventType, payload interface{}) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(topic, payload)
}
