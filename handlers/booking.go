package handlers

import (
	"net/http"

	"gigbook/middleware"
	"gigbook/models"
	"gigbook/services/booking"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	Service booking.EscrowService
}

func NewBookingHandler(svc booking.EscrowService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

type refundRequestBody struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

func caller(c *gin.Context) (models.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
	return caller, ok
}

// CreateBooking handles POST /api/booking.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	res, err := h.Service.CreateBookingAndHoldFunds(c.Request.Context(), who, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *BookingHandler) RequestPayment(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id := c.Param("id")
	status, err := h.Service.RequestPayment(c.Request.Context(), who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paymentId": id, "status": status})
}

func (h *BookingHandler) ReleaseFunds(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	res, err := h.Service.ReleaseFunds(c.Request.Context(), who, c.Param("paymentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *BookingHandler) RequestRefund(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var body refundRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	rr, err := h.Service.RequestRefund(c.Request.Context(), who, c.Param("paymentId"), body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rr)
}

func (h *BookingHandler) ApproveRefund(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	res, err := h.Service.ApproveRefund(c.Request.Context(), who, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *BookingHandler) RejectRefund(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	rr, err := h.Service.RejectRefund(c.Request.Context(), who, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rr)
}

func (h *BookingHandler) GetPaymentDetails(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	details, err := h.Service.GetPaymentDetails(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": details})
}

func (h *BookingHandler) GetMyTasks(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	tasks, err := h.Service.GetMyTasks(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *BookingHandler) GetPendingRefundRequests(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	reqs, err := h.Service.GetPendingRefundRequests(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refundRequests": reqs})
}
