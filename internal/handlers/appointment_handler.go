package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bookAppointmentRequest struct {
	DocID    string `json:"docId" binding:"required"`
	SlotDate string `json:"slotDate" binding:"required"`
	SlotTime string `json:"slotTime" binding:"required"`
}

// BookAppointment reserves a slot and creates the appointment for the
// authenticated user.
func (h *Handler) BookAppointment(c *gin.Context) {
	userID, ok := h.principalID(c)
	if !ok {
		return
	}

	var req bookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
		return
	}

	docID, err := primitive.ObjectIDFromHex(req.DocID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid doctor ID"})
		return
	}

	apt, err := h.Booking.Book(c.Request.Context(), userID, docID, req.SlotDate, req.SlotTime)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, gin.H{"message": "Appointment booked", "appointment": apt})
}

// ListAppointments returns the authenticated user's appointments, newest
// first.
func (h *Handler) ListAppointments(c *gin.Context) {
	userID, ok := h.principalID(c)
	if !ok {
		return
	}

	appointments, err := h.Appointments.FindByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve appointments"})
		return
	}

	h.ok(c, gin.H{"appointments": appointments})
}

type cancelAppointmentRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
}

// CancelAppointment cancels one of the authenticated user's own
// appointments.
func (h *Handler) CancelAppointment(c *gin.Context) {
	userID, ok := h.principalID(c)
	if !ok {
		return
	}

	aptID, ok := h.appointmentID(c)
	if !ok {
		return
	}

	if err := h.Cancellation.Cancel(c.Request.Context(), aptID, userID, false); err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, gin.H{"message": "Appointment cancelled"})
}

// CreatePaymentOrder opens a gateway order for an appointment.
func (h *Handler) CreatePaymentOrder(c *gin.Context) {
	aptID, ok := h.appointmentID(c)
	if !ok {
		return
	}

	order, err := h.Payments.CreateOrder(c.Request.Context(), aptID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, gin.H{"order": order})
}

// VerifyPayment confirms a gateway order and marks the appointment paid.
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req struct {
		OrderID string `json:"razorpay_order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Order ID missing"})
		return
	}

	if err := h.Payments.ConfirmOrder(c.Request.Context(), req.OrderID); err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, gin.H{"message": "Payment successful"})
}

func (h *Handler) appointmentID(c *gin.Context) (primitive.ObjectID, bool) {
	var req cancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Appointment ID missing"})
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(req.AppointmentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid appointment ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}
