package routes

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"

	"vehicle-parking-server/config"
	"vehicle-parking-server/database"
	"vehicle-parking-server/models"
)

// RegisterProfileRoutes registers the profile image routes
func RegisterProfileRoutes(router *gin.RouterGroup) {
	router.POST("/profile/upload", uploadProfileImage)
	router.GET("/profile/current", currentProfileImage)
}

// validateImageFile validates extension and size (<= 5MB)
func validateImageFile(h *multipart.FileHeader) bool {
	if h == nil || h.Size <= 0 || h.Size > 5*1024*1024 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(h.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}

// uploadProfileImage stores the user's profile picture in the file store
// under a key derived from the user id, so re-uploads overwrite in place.
func uploadProfileImage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})
		return
	}
	if !validateImageFile(header) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid file",
			"message": "Allowed: png, jpg, jpeg, webp up to 5MB",
		})
		return
	}

	cfg := config.AppConfig.Cloudinary
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		log.Printf("Cloudinary environment variables not set")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "File store not configured"})
		return
	}

	cld, err := cloudinary.NewFromURL(fmt.Sprintf("cloudinary://%s:%s@%s", cfg.APIKey, cfg.APISecret, cfg.CloudName))
	if err != nil {
		log.Printf("Failed to initialize Cloudinary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "File store initialization failed"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	overwrite := true
	unique := false
	upload, err := cld.Upload.Upload(context.Background(), file, uploader.UploadParams{
		Folder:         "profile",
		PublicID:       strconv.Itoa(int(user.ID)),
		Overwrite:      &overwrite,
		UniqueFilename: &unique,
		ResourceType:   "image",
	})
	if err != nil {
		log.Printf("Profile image upload failed for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	if err := database.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("profile_image_url", upload.SecureURL).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Profile image updated",
		"profile_image_url": upload.SecureURL,
	})
}

// currentProfileImage returns the stored image URL for the authenticated user
func currentProfileImage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var fresh models.User
	if err := database.DB.First(&fresh, user.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if fresh.ProfileImageURL == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No profile image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile_image_url": *fresh.ProfileImageURL})
}
