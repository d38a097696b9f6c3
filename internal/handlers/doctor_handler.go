package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DoctorList is the public catalogue of doctors. Credentials are stripped
// by the model's JSON tags.
func (h *Handler) DoctorList(c *gin.Context) {
	doctors, err := h.Doctors.FindAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve doctors"})
		return
	}
	h.ok(c, gin.H{"doctors": doctors})
}
