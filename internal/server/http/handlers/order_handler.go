package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stitchfab/stitchfab/internal/domain/model"
	"github.com/stitchfab/stitchfab/internal/server/http/dto"
	"github.com/stitchfab/stitchfab/internal/usecase"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade CommerceFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade CommerceFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	userID := CurrentUserID(c)

	in, ok := bindOrderInput(c)
	if !ok {
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), userID, in)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrderResponse(*order))
}

// CreateGuest handles POST /api/orders/guest.
func (h *OrderHandler) CreateGuest(c *gin.Context) {
	in, ok := bindOrderInput(c)
	if !ok {
		return
	}

	order, err := h.facade.CreateGuestOrder(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrderResponse(*order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	userID := CurrentUserID(c)
	orders, err := h.facade.Orders(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, dto.ToOrderResponse(o))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id with an ownership check.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	userID := CurrentUserID(c)
	user, err := h.facade.User(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	order, err := h.facade.Order(c.Request.Context(), orderID, userID, user.IsAdmin())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponse(*order))
}

// ListAll handles GET /api/orders/all/summary for operators.
func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, revenue, err := h.facade.AllOrders(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := dto.OrdersSummaryResponse{
		Orders:       make([]dto.OrderResponse, 0, len(orders)),
		TotalRevenue: revenue,
	}
	for _, o := range orders {
		response.Orders = append(response.Orders, dto.ToOrderResponse(o))
	}

	c.JSON(http.StatusOK, response)
}

// UpdateStatus handles PUT /api/orders/:id for operators.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var update model.StatusUpdate
	if req.Status != nil {
		status := model.OrderStatus(*req.Status)
		update.Status = &status
	}
	if req.PaymentStatus != nil {
		paymentStatus := model.PaymentStatus(*req.PaymentStatus)
		update.PaymentStatus = &paymentStatus
	}

	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), orderID, update)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponse(*order))
}

func bindOrderInput(c *gin.Context) (usecase.CreateOrderInput, bool) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return usecase.CreateOrderInput{}, false
	}

	items := make([]usecase.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		in := usecase.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			Material:  item.Material,
		}
		if item.CustomDesign != nil {
			in.CustomDesign = &model.CustomDesign{
				ImageURL:  item.CustomDesign.ImageURL,
				PositionX: item.CustomDesign.PositionX,
				PositionY: item.CustomDesign.PositionY,
			}
		}
		items = append(items, in)
	}

	return usecase.CreateOrderInput{
		Items: items,
		ShippingAddress: model.ShippingAddress{
			FullName:   req.ShippingAddress.FullName,
			Phone:      req.ShippingAddress.Phone,
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		DeliveryCharge: req.DeliveryCharge,
		PaymentMethod:  model.PaymentMethod(req.PaymentMethod),
		IPAddress:      c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
	}, true
}
