package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/engine"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/handler/response"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/session"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/chains"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/walleterr"
)

// SessionHandler 把会话引擎暴露为 HTTP 接口。
// 所有状态读取都走 Snapshot, handler 自身无状态。
type SessionHandler struct {
	engine *engine.Engine
}

func NewSessionHandler(e *engine.Engine) *SessionHandler {
	return &SessionHandler{engine: e}
}

// snapshotView 是会话状态的对外投影
type snapshotView struct {
	Status             string                      `json:"status"`
	Address            string                      `json:"address,omitempty"`
	ChainID            uint64                      `json:"chain_id,omitempty"`
	Network            string                      `json:"network"`
	NativeBalance      string                      `json:"native_balance"`
	NativeDisplay      string                      `json:"native_balance_display"`
	TokenBalance       string                      `json:"token_balance"`
	PortfolioValue     string                      `json:"portfolio_value"`
	Transactions       []session.TransactionRecord `json:"transactions"`
	PendingCount       int                         `json:"pending_count"`
	LastError          *errorView                  `json:"last_error,omitempty"`
	LoadingBalance     bool                        `json:"loading_balance"`
	SendingTransaction bool                        `json:"sending_transaction"`
}

type errorView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (h *SessionHandler) view() snapshotView {
	snap := h.engine.Snapshot()
	v := snapshotView{
		Status:             snap.Status.String(),
		Address:            snap.Address,
		ChainID:            snap.ChainID,
		Network:            h.engine.NetworkName(),
		NativeBalance:      snap.NativeBalance.String(),
		NativeDisplay:      h.engine.FormatBalance(snap.NativeBalance.String()),
		TokenBalance:       snap.TokenBalance.String(),
		PortfolioValue:     snap.PortfolioValue.String(),
		Transactions:       snap.Transactions,
		PendingCount:       len(snap.PendingHashes),
		LoadingBalance:     snap.LoadingBalance,
		SendingTransaction: snap.SendingTransaction,
	}
	if snap.LastErr != nil {
		v.LastError = &errorView{Kind: string(snap.LastErr.Kind), Message: snap.LastErr.Message}
	}
	return v
}

// Connect 发起钱包连接
// @Summary 连接钱包
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/session/connect [post]
func (h *SessionHandler) Connect(c *gin.Context) {
	if err := h.engine.Connect(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.view())
}

// Disconnect 断开当前会话
// @Summary 断开钱包
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/session/disconnect [post]
func (h *SessionHandler) Disconnect(c *gin.Context) {
	h.engine.Disconnect()
	response.Success(c, h.view())
}

// Snapshot 读取当前会话状态
// @Summary 会话状态快照
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/session [get]
func (h *SessionHandler) Snapshot(c *gin.Context) {
	response.Success(c, h.view())
}

// RefreshBalance 主动刷新余额
// @Summary 刷新余额
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/session/balance/refresh [post]
func (h *SessionHandler) RefreshBalance(c *gin.Context) {
	if err := h.engine.RefreshBalance(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.view())
}

// Transactions 列出会话内的交易历史 (最新在前)
// @Summary 交易历史
// @Tags Transaction
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/transactions [get]
func (h *SessionHandler) Transactions(c *gin.Context) {
	snap := h.engine.Snapshot()
	views := make([]gin.H, 0, len(snap.Transactions))
	for _, tx := range snap.Transactions {
		views = append(views, gin.H{
			"hash":         tx.Hash,
			"hash_short":   chains.FormatTxHash(tx.Hash, 10),
			"status":       tx.Status,
			"gas_used":     tx.GasUsed,
			"block_number": tx.BlockNumber,
		})
	}
	response.Success(c, gin.H{"transactions": views, "pending": len(snap.PendingHashes)})
}

// Send 提交一笔转账
// @Summary 提交转账
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body engine.SendParams true "Send Request"
// @Success 200 {object} response.Response
// @Router /api/v1/transactions/send [post]
func (h *SessionHandler) Send(c *gin.Context) {
	var req engine.SendParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, walleterr.Wrap(walleterr.KindInvalidAmount, "Invalid request body", err))
		return
	}

	hash, err := h.engine.Send(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"hash":       hash,
		"hash_short": chains.FormatTxHash(hash, 10),
		"status":     session.TxPending,
	})
}

// EstimateGas 预估一笔转账的 Gas 用量
// @Summary Gas 预估
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body engine.SendParams true "Estimate Request"
// @Success 200 {object} response.Response
// @Router /api/v1/transactions/estimate [post]
func (h *SessionHandler) EstimateGas(c *gin.Context) {
	var req engine.SendParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, walleterr.Wrap(walleterr.KindInvalidAmount, "Invalid request body", err))
		return
	}

	gas, err := h.engine.EstimateGas(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"gas": gas})
}

// GasPrice 查询当前建议 Gas 价格
// @Summary Gas 价格
// @Tags Transaction
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/transactions/gas-price [get]
func (h *SessionHandler) GasPrice(c *gin.Context) {
	price, err := h.engine.GasPrice(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"gas_price_wei": price.String()})
}

// CreateWallet 离线生成一个自托管钱包
// @Summary 生成离线钱包
// @Tags Wallet
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/wallet/new [post]
func (h *SessionHandler) CreateWallet(c *gin.Context) {
	w, err := h.engine.CreateOfflineWallet()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, w)
}

type validateAddressRequest struct {
	Address string `json:"address" binding:"required"`
}

// ValidateAddress 校验地址格式 (EIP-55)
// @Summary 地址校验
// @Tags Wallet
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/wallet/validate-address [post]
func (h *SessionHandler) ValidateAddress(c *gin.Context) {
	var req validateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, walleterr.ErrInvalidAddress)
		return
	}
	response.Success(c, gin.H{
		"address": req.Address,
		"valid":   h.engine.IsValidAddress(req.Address),
	})
}
