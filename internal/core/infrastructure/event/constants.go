// 事件类型常量定义

package event

import eventiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/event"

// 全局事件类型定义
const (
	// PageStateChanged 页面状态发生变化，参数为 page.State 快照
	PageStateChanged eventiface.EventType = "page:state"

	// WalletAlert 钱包连接产生了需要用户确认的提示，参数为提示文本
	WalletAlert eventiface.EventType = "wallet:alert"
)
