package handlers

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mavedefi/whitelist-dapp/internal/api/http/types"
	"github.com/mavedefi/whitelist-dapp/internal/page"
)

//go:embed templates/*.html
var templateFS embed.FS

// IndexTemplate 页面模板名
const IndexTemplate = "index.html"

// LoadTemplates 解析内置模板
func LoadTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// IndexView 页面模板数据
type IndexView struct {
	Title        string
	Heading      string
	Description  string
	FooterCredit string
	FooterURL    string
	State        page.State
	Alert        string
}

// PageHandlers 页面与页面动作
type PageHandlers struct {
	home    *page.Home
	baseCtx func() context.Context
}

// NewPageHandlers 创建页面处理器
// baseCtx 提供后台加入流程使用的上下文，不随单个请求结束而取消
func NewPageHandlers(home *page.Home, baseCtx func() context.Context) *PageHandlers {
	if baseCtx == nil {
		baseCtx = context.Background
	}
	return &PageHandlers{home: home, baseCtx: baseCtx}
}

// RegisterRoutes 注册 HTML 页面路由
func (h *PageHandlers) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.Index)
	r.POST("/connect", h.Connect)
	r.POST("/join", h.Join)
}

// RegisterAPIRoutes 注册 JSON 路由
func (h *PageHandlers) RegisterAPIRoutes(r gin.IRoutes) {
	r.GET("/state", h.State)
	r.POST("/connect", h.APIConnect)
	r.POST("/join", h.APIJoin)
}

// Index 渲染页面；待展示的提示只渲染一次
func (h *PageHandlers) Index(c *gin.Context) {
	c.HTML(http.StatusOK, IndexTemplate, IndexView{
		Title:        page.Title,
		Heading:      page.Heading,
		Description:  page.Description,
		FooterCredit: page.FooterCredit,
		FooterURL:    page.FooterURL,
		State:        h.home.Snapshot(),
		Alert:        h.home.TakeAlert(),
	})
}

// Connect 表单：连接钱包后回到页面
func (h *PageHandlers) Connect(c *gin.Context) {
	// 失败已由页面记录，提示会在下次渲染时弹出
	_ = h.home.ConnectWallet(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

// Join 表单：后台加入白名单后回到页面
// 交易发出前按钮不可点击，发出后显示 Loading...，由 /ws 推送触发刷新
func (h *PageHandlers) Join(c *gin.Context) {
	_ = h.home.JoinAsync(h.baseCtx())
	c.Redirect(http.StatusSeeOther, "/")
}

// State 当前页面快照
func (h *PageHandlers) State(c *gin.Context) {
	c.JSON(http.StatusOK, types.NewSuccessResponse(h.home.Snapshot()).WithRequestID(c.GetString("request_id")))
}

// APIConnect 连接钱包
func (h *PageHandlers) APIConnect(c *gin.Context) {
	if err := h.home.ConnectWallet(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(h.home.Snapshot()).WithRequestID(c.GetString("request_id")))
}

// APIJoin 后台加入白名单，返回 202
func (h *PageHandlers) APIJoin(c *gin.Context) {
	if err := h.home.JoinAsync(h.baseCtx()); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, types.NewSuccessResponse(h.home.Snapshot()).WithRequestID(c.GetString("request_id")))
}
