package provider

import (
	"context"
	"encoding/json"
	"errors"
)

// 带外通知事件名, 对应 EIP-1193 的标准事件
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
	EventDisconnect      = "disconnect"
)

// userRejectedCode 是 EIP-1193 约定的用户拒绝错误码
const userRejectedCode = 4001

// Handler 处理一条带外通知, payload 为原始 JSON
type Handler func(payload json.RawMessage)

// Provider 是注入的签名端点的最小接口 (EIP-1193 风格)。
// 引擎只通过它发起请求和订阅通知, 端点的所有权属于宿主环境。
type Provider interface {
	// Request 发起一次 JSON-RPC 请求并返回原始结果
	Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)

	// On 注册事件处理器, 返回的函数用于精确注销该处理器。
	// 订阅必须在会话结束时全部注销, 避免 handler 泄漏。
	On(event string, handler Handler) (remove func())
}

// Descriptor 描述一个候选签名端点及其能力标记
type Descriptor struct {
	Name string
	// Preferred 对应 isMetaMask 一类的首选标记
	Preferred bool
	// Restricted 标记在嵌入上下文中不可信任的端点 (如 Trust Wallet)
	Restricted bool
	Provider   Provider
}

// Source 枚举宿主环境暴露的签名端点。
// List 对应多 Provider 列表 (window.ethereum.providers 的同构),
// Default 对应兜底的环境默认端点 (window.ethereum 本体)。
type Source interface {
	List() []Descriptor
	Default() (Descriptor, bool)
}

// StaticSource 是配置驱动的固定 Source 实现
type StaticSource struct {
	Endpoints []Descriptor
	Ambient   *Descriptor
}

func (s *StaticSource) List() []Descriptor {
	return s.Endpoints
}

func (s *StaticSource) Default() (Descriptor, bool) {
	if s.Ambient == nil {
		return Descriptor{}, false
	}
	return *s.Ambient, true
}

// rpcError 匹配携带 JSON-RPC 错误码的错误 (go-ethereum rpc.Error 同形)
type rpcError interface {
	Error() string
	ErrorCode() int
}

// IsUserRejected 判断错误是否为用户在签名器中拒绝授权/签名 (code 4001)
func IsUserRejected(err error) bool {
	var re rpcError
	if errors.As(err, &re) {
		return re.ErrorCode() == userRejectedCode
	}
	return false
}
