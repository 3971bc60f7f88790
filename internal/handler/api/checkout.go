package api

import (
	"net/http"
	"strings"

	"pos-checkout/internal/domain/order"
	reqdto "pos-checkout/internal/handler/dto/request"
	resdto "pos-checkout/internal/handler/dto/response"
	"pos-checkout/internal/handler/httperr"
	"pos-checkout/internal/pkg/errs"
	"pos-checkout/internal/usecase/commands"
	"pos-checkout/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

var errMissingFingerprint = errs.New("md5 missing from request")

type CheckoutHandler struct {
	cmds commands.OrderCommands
	q    queries.CheckoutQueries
}

func NewCheckoutHandler(cmds commands.OrderCommands, q queries.CheckoutQueries) *CheckoutHandler {
	return &CheckoutHandler{cmds: cmds, q: q}
}

// @Summary Create order
// @Description Price the cart, issue a KHQR payment code and register the order as pending
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body reqdto.CreateOrderRequest true "Order request"
// @Success 200 {object} resdto.CreateOrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /api/create-order [post]
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	var req reqdto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid data", nil)
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid data", nil)
		return
	}

	result, err := h.cmds.CreateOrder(c.Request.Context(), in)
	if err != nil {
		switch {
		case errs.Is(err, order.ErrNonPositiveTotal):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid total", nil)
		case errs.Is(err, commands.ErrValidation):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid data", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Server Error", nil)
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromCreateOrderResult(result))
}

// @Summary Check payment status
// @Description Ask the settlement network whether the order paid; success is reported once per order
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body reqdto.CheckStatusRequest true "Fingerprint"
// @Success 200 {object} resdto.CheckStatusResponse
// @Failure 400 {object} httperr.Response
// @Router /api/check-status [post]
func (h *CheckoutHandler) CheckStatus(c *gin.Context) {
	var req reqdto.CheckStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "MD5 missing", nil)
		return
	}
	if strings.TrimSpace(req.MD5) == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, errMissingFingerprint, "MD5 missing", nil)
		return
	}

	status, err := h.cmds.CheckStatus(c.Request.Context(), req.MD5)
	if err != nil {
		if errs.Is(err, commands.ErrValidation) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "MD5 missing", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Server Error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.CheckStatusResponse{Status: string(status)})
}

// @Summary Checkout configuration
// @Tags checkout
// @Produce json
// @Success 200 {object} resdto.ConfigResponse
// @Router /api/config [get]
func (h *CheckoutHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, resdto.FromPublicConfig(h.q.PublicConfig(c.Request.Context())))
}

// @Summary List products
// @Tags checkout
// @Produce json
// @Success 200 {array} resdto.ProductResponse
// @Failure 503 {object} httperr.Response
// @Router /api/products [get]
func (h *CheckoutHandler) Products(c *gin.Context) {
	products, err := h.q.ListProducts(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Catalog unavailable", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProducts(products))
}
