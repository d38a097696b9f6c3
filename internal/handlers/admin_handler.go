package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medibook/booking-api/internal/models"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/internal/utils"
)

// AddDoctor registers a practitioner from a multipart form. The profile
// image is mandatory and is stored in the blob store before the document
// is written.
func (h *Handler) AddDoctor(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")
	speciality := c.PostForm("speciality")
	degree := c.PostForm("degree")
	experience := c.PostForm("experience")
	about := c.PostForm("about")
	feesStr := c.PostForm("fees")
	addressJSON := c.PostForm("address")

	if name == "" || email == "" || password == "" || speciality == "" ||
		degree == "" || experience == "" || about == "" || feesStr == "" || addressJSON == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing details"})
		return
	}
	if len(password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please enter a strong password"})
		return
	}

	fees, err := strconv.ParseFloat(feesStr, 64)
	if err != nil || fees < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please enter a valid fee amount"})
		return
	}

	var address models.Address
	if err := json.Unmarshal([]byte(addressJSON), &address); err != nil || address.Line1 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid address format"})
		return
	}

	imageURL, ok := h.uploadImage(c, "image", true)
	if !ok {
		return
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to hash password"})
		return
	}

	doctor := &models.Doctor{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Email:       email,
		Password:    hashedPassword,
		Image:       imageURL,
		Speciality:  speciality,
		Degree:      degree,
		Experience:  experience,
		About:       about,
		Available:   true,
		Fees:        fees,
		Address:     address,
		Date:        time.Now(),
		SlotsBooked: models.SlotLedger{},
	}

	if err := h.Doctors.Insert(c.Request.Context(), doctor); err != nil {
		if err == repository.ErrDuplicateEmail {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "A doctor with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to add doctor"})
		return
	}

	h.ok(c, gin.H{"message": "Doctor added"})
}

// AllDoctors lists every doctor for the admin panel.
func (h *Handler) AllDoctors(c *gin.Context) {
	doctors, err := h.Doctors.FindAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve doctors"})
		return
	}
	h.ok(c, gin.H{"doctors": doctors})
}

// AllAppointments lists every appointment for the admin panel.
func (h *Handler) AllAppointments(c *gin.Context) {
	appointments, err := h.Appointments.FindAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve appointments"})
		return
	}
	h.ok(c, gin.H{"appointments": appointments})
}

// AdminCancelAppointment cancels any appointment, bypassing the ownership
// check.
func (h *Handler) AdminCancelAppointment(c *gin.Context) {
	aptID, ok := h.appointmentID(c)
	if !ok {
		return
	}

	if err := h.Cancellation.Cancel(c.Request.Context(), aptID, primitive.NilObjectID, true); err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, gin.H{"message": "Appointment cancelled"})
}

// ChangeAvailability toggles whether a doctor accepts new bookings.
func (h *Handler) ChangeAvailability(c *gin.Context) {
	var req struct {
		DocID string `json:"docId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Doctor ID missing"})
		return
	}

	docID, err := primitive.ObjectIDFromHex(req.DocID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid doctor ID"})
		return
	}

	doctor, err := h.Doctors.FindByID(c.Request.Context(), docID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Doctor not found"})
		return
	}

	if err := h.Doctors.SetAvailability(c.Request.Context(), docID, !doctor.Available); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update availability"})
		return
	}

	h.ok(c, gin.H{"message": "Availability changed", "available": !doctor.Available})
}
