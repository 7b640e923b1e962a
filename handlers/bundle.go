package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking and escrow endpoints
	CreateBooking  gin.HandlerFunc
	ReleaseFunds   gin.HandlerFunc
	RequestPayment gin.HandlerFunc
	RequestRefund  gin.HandlerFunc
	ApproveRefund  gin.HandlerFunc
	RejectRefund   gin.HandlerFunc

	// Queries
	GetPaymentDetails        gin.HandlerFunc
	GetMyTasks               gin.HandlerFunc
	GetPendingRefundRequests gin.HandlerFunc

	Health gin.HandlerFunc
}

// NewHandlerBundle wires the booking handler's methods into a bundle.
func NewHandlerBundle(bh *BookingHandler) *HandlerBundle {
	return &HandlerBundle{
		CreateBooking:            bh.CreateBooking,
		ReleaseFunds:             bh.ReleaseFunds,
		RequestPayment:           bh.RequestPayment,
		RequestRefund:            bh.RequestRefund,
		ApproveRefund:            bh.ApproveRefund,
		RejectRefund:             bh.RejectRefund,
		GetPaymentDetails:        bh.GetPaymentDetails,
		GetMyTasks:               bh.GetMyTasks,
		GetPendingRefundRequests: bh.GetPendingRefundRequests,
		Health:                   HealthHandler,
	}
}
