package provider

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
)

// RPCProvider 通过 go-ethereum 的 rpc.Client 将一个 JSON-RPC 节点
// 适配为 Provider。节点端点不会主动推送钱包事件 (accountsChanged 等),
// 订阅机制仅在 Close 时分发 disconnect 通知。
type RPCProvider struct {
	client *rpc.Client

	mu       sync.Mutex
	nextID   int
	handlers map[string]map[int]Handler
	closed   bool
}

// DialRPC 建立到节点的连接
func DialRPC(url string) (*RPCProvider, error) {
	client, err := rpc.Dial(url)
	if err != nil {
		return nil, err
	}
	return &RPCProvider{
		client:   client,
		handlers: make(map[string]map[int]Handler),
	}, nil
}

func (p *RPCProvider) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	// eth_requestAccounts 在普通节点上等价于 eth_accounts (没有授权弹窗)
	if method == "eth_requestAccounts" {
		method = "eth_accounts"
	}

	var result json.RawMessage
	if err := p.client.CallContext(ctx, &result, method, params...); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *RPCProvider) On(event string, handler Handler) (remove func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handlers[event] == nil {
		p.handlers[event] = make(map[int]Handler)
	}
	id := p.nextID
	p.nextID++
	p.handlers[event][id] = handler

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.handlers[event], id)
	}
}

// Close 关闭底层连接并向订阅者分发 disconnect 事件
func (p *RPCProvider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	var hs []Handler
	for _, h := range p.handlers[EventDisconnect] {
		hs = append(hs, h)
	}
	p.mu.Unlock()

	for _, h := range hs {
		h(json.RawMessage(`{}`))
	}
	p.client.Close()
}
