package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mavedefi/whitelist-dapp/client/core/contract"
	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	"github.com/mavedefi/whitelist-dapp/internal/api/http/types"
	"github.com/mavedefi/whitelist-dapp/internal/page"
)

// StatusFor 把领域错误映射为 HTTP 状态码和错误码
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, page.ErrJoinInProgress):
		return http.StatusConflict, types.ErrJoinInProgress
	case errors.Is(err, page.ErrAlreadyJoined):
		return http.StatusConflict, types.ErrAlreadyJoined
	case errors.Is(err, page.ErrNotConnected):
		return http.StatusConflict, types.ErrNotConnected
	case errors.Is(err, wallet.ErrWrongNetwork):
		return http.StatusConflict, types.ErrWrongNetwork
	case errors.Is(err, wallet.ErrNoSigner):
		return http.StatusServiceUnavailable, types.ErrNoSigner
	case errors.Is(err, contract.ErrTransactionFailed):
		return http.StatusUnprocessableEntity, types.ErrExecutionFailed
	}
	return http.StatusBadGateway, types.ErrUpstream
}

// ErrorHandler 错误处理中间件，把 handler 通过 c.Error 上报的错误写成 JSON
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, code := StatusFor(err)

		logger.Warn("HTTP error",
			zap.String("code", code),
			zap.String("request_id", GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))

		c.JSON(status, types.NewErrorResponse(code, err.Error()).WithRequestID(GetRequestID(c)))
		c.Abort()
	}
}
