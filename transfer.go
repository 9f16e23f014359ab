// Package payment 统一支付层
package payment

// Transfer 转账数据的只读视图
type Transfer interface {
	// GetOutTransferNo 商户转账单号，必填且在商户侧唯一
	GetOutTransferNo() string
	// GetAccount 收款方账户标识
	GetAccount() string
	// GetAmount 转账金额，单位为分
	GetAmount() int64
	// GetDescription 转账备注
	GetDescription() string
	// NeedCheckName 是否强校验收款人真实姓名
	NeedCheckName() bool
	// GetReUserName 收款人真实姓名，NeedCheckName 为真时必填
	GetReUserName() string
	// GetPlatform 支付平台
	GetPlatform() Platform
}

// TransferReq 转账视图的内置实现
type TransferReq struct {
	OutTransferNo string
	Account       string
	Amount        int64
	Description   string
	CheckName     bool
	ReUserName    string
	Platform      Platform
}

func (t *TransferReq) GetOutTransferNo() string { return t.OutTransferNo }
func (t *TransferReq) GetAccount() string       { return t.Account }
func (t *TransferReq) GetAmount() int64         { return t.Amount }
func (t *TransferReq) GetDescription() string   { return t.Description }
func (t *TransferReq) NeedCheckName() bool      { return t.CheckName }
func (t *TransferReq) GetReUserName() string    { return t.ReUserName }
func (t *TransferReq) GetPlatform() Platform    { return t.Platform }

// platformTransfer 平台覆盖装饰器，只替换平台标识
type platformTransfer struct {
	Transfer
	platform Platform
}

// TransferWithPlatform 使用指定的支付平台包装转账单
func TransferWithPlatform(p Platform, transfer Transfer) Transfer {
	return &platformTransfer{Transfer: transfer, platform: p}
}

func (t *platformTransfer) GetPlatform() Platform { return t.platform }
