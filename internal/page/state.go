package page

// Phase 页面阶段
type Phase string

const (
	PhaseDisconnected       Phase = "disconnected"
	PhaseConnectedNotMember Phase = "connected_not_member"
	PhaseConnectedPending   Phase = "connected_pending"
	PhaseConnectedMember    Phase = "connected_member"
)

// Action 按钮触发的动作
type Action string

const (
	ActionNone    Action = ""
	ActionConnect Action = "connect"
	ActionJoin    Action = "join"
)

// 按钮文案
const (
	LabelConnect = "Connect your Ethereum wallet."
	LabelJoin    = "Join the Whitelist."
	LabelLoading = "Loading..."
	LabelJoined  = "Thanks for joining the Whitelist!"
)

// 页面文案
const (
	Title        = "Mave Whitelist Dapp"
	Heading      = "Welcome to Mave DeFi👋"
	Description  = "Mave DeFi is a collection of Non Fungible Tokens for Web3 builders and devs."
	FooterCredit = "Augustine Ikenwa"
	FooterURL    = "https://www.github.com/ikenwaa"
)

// Button 按钮视图
type Button struct {
	Label    string `json:"label"`
	Action   Action `json:"action,omitempty"`
	Disabled bool   `json:"disabled"`
}

// State 页面视图快照
type State struct {
	Phase     Phase  `json:"phase"`
	Connected bool   `json:"connected"`
	Joined    bool   `json:"joined"`
	Loading   bool   `json:"loading"`
	Count     uint64 `json:"count"`
	Account   string `json:"account,omitempty"`
	Button    Button `json:"button"`
	Alert     string `json:"alert,omitempty"`
}

// phaseOf 由状态位推导阶段；joined 优先于 loading
func phaseOf(connected, joined, loading bool) Phase {
	switch {
	case !connected:
		return PhaseDisconnected
	case joined:
		return PhaseConnectedMember
	case loading:
		return PhaseConnectedPending
	}
	return PhaseConnectedNotMember
}

// buttonOf 按钮渲染规则
func buttonOf(connected, joined, loading bool) Button {
	switch {
	case !connected:
		return Button{Label: LabelConnect, Action: ActionConnect}
	case joined:
		return Button{Label: LabelJoined}
	case loading:
		return Button{Label: LabelLoading, Disabled: true}
	}
	return Button{Label: LabelJoin, Action: ActionJoin}
}
