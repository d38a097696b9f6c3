package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medibook/booking-api/internal/models"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/internal/utils"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

type registerUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterUser creates a patient account and returns a bearer token.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to hash password"})
		return
	}

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
		Date:     time.Now(),
	}

	if err := h.Users.Insert(c.Request.Context(), user); err != nil {
		if err == repository.ErrDuplicateEmail {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create user"})
		return
	}

	token, err := h.Tokens.Issue(user.ID.Hex(), utils.RoleUser)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not generate token"})
		return
	}

	h.ok(c, gin.H{"token": token})
}

// LoginUser authenticates a patient by email and password.
func (h *Handler) LoginUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	token, err := h.Tokens.Issue(user.ID.Hex(), utils.RoleUser)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not generate token"})
		return
	}

	h.ok(c, gin.H{"token": token})
}

// LoginAdmin checks the configured admin credentials and issues an admin
// token.
func (h *Handler) LoginAdmin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	if req.Email != h.Cfg.AdminEmail || req.Password != h.Cfg.AdminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	token, err := h.Tokens.Issue(req.Email, utils.RoleAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not generate token"})
		return
	}

	h.ok(c, gin.H{"token": token})
}

// GetProfile returns the authenticated user's profile.
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := h.principalID(c)
	if !ok {
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	h.ok(c, gin.H{"userData": user})
}

// UpdateProfile updates the authenticated user's profile from a multipart
// form. The optional image field is pushed to the blob store and replaced
// by its public URL.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := h.principalID(c)
	if !ok {
		return
	}

	update := models.ProfileUpdate{
		Name:   c.PostForm("name"),
		Phone:  c.PostForm("phone"),
		DOB:    c.PostForm("dob"),
		Gender: c.PostForm("gender"),
	}
	if update.Name == "" || update.Phone == "" || update.DOB == "" || update.Gender == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Data is missing"})
		return
	}
	if !phonePattern.MatchString(update.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone number must be 10 digits"})
		return
	}

	if addressJSON := c.PostForm("address"); addressJSON != "" {
		if err := json.Unmarshal([]byte(addressJSON), &update.Address); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid address format"})
			return
		}
	}

	imageURL, ok := h.uploadImage(c, "image", false)
	if !ok {
		return
	}
	update.Image = imageURL

	if err := h.Users.UpdateProfile(c.Request.Context(), userID, update); err != nil {
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update profile"})
		return
	}

	h.ok(c, gin.H{"message": "Profile updated"})
}

// principalID extracts the authenticated user's ObjectID from the gin
// context set by the auth middleware.
func (h *Handler) principalID(c *gin.Context) (primitive.ObjectID, bool) {
	idHex := c.GetString("userID")
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// uploadImage pushes the named multipart file to the blob store and returns
// its URL. When required is false a missing file yields an empty URL.
func (h *Handler) uploadImage(c *gin.Context, field string, required bool) (string, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if !required {
			return "", true
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Image file is required"})
		return "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Could not read image file"})
		return "", false
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	url, err := h.Uploader.Upload(ctx, file)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Image upload failed"})
		return "", false
	}
	return url, true
}
