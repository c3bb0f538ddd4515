package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"gp-intake-api/config"
	"gp-intake-api/middleware"
	"gp-intake-api/models"
	"gp-intake-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const magicLinkTTL = 15 * time.Minute

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string      `json:"token"`
	User    models.User `json:"user"`
	Message string      `json:"message"`
}

// Login handles password authentication for admin and reviewer accounts.
func Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Preload("Role").
		Where("email = ? AND delete_at IS NULL", utils.NormalizeEmail(req.Email)).
		First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if user.Password == "" || !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := generateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		User:    user,
		Message: "Login successful",
	})
}

// RequestMagicLink emails a single-use sign-in link to an applicant. The
// response is the same whether or not the account existed, so the endpoint
// cannot be used to probe for registered addresses.
func RequestMagicLink(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if !utils.ValidateEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	genericResponse := gin.H{
		"success": true,
		"message": "If the address is valid, a sign-in link has been sent",
	}

	var user models.User
	err := config.DB.Where("email = ? AND delete_at IS NULL", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		user = models.User{
			Email:    email,
			RoleID:   models.RoleApplicant,
			CreateAt: &now,
			UpdateAt: &now,
		}
		if createErr := config.DB.Create(&user).Error; createErr != nil {
			log.Printf("magic link: failed to create account for %s: %v", email, createErr)
			c.JSON(http.StatusOK, genericResponse)
			return
		}
	} else if err != nil {
		log.Printf("magic link: lookup failed for %s: %v", email, err)
		c.JSON(http.StatusOK, genericResponse)
		return
	}

	rawToken := uuid.NewString()
	token := models.AuthToken{
		UserID:    user.UserID,
		TokenHash: hashToken(rawToken),
		Purpose:   models.TokenPurposeMagicLink,
		ExpiresAt: time.Now().Add(magicLinkTTL),
		CreatedAt: time.Now(),
	}
	if err := config.DB.Create(&token).Error; err != nil {
		log.Printf("magic link: failed to store token for %s: %v", email, err)
		c.JSON(http.StatusOK, genericResponse)
		return
	}

	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	link := fmt.Sprintf("%s/auth/verify?token=%s", baseURL, rawToken)
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px;">
			<h2>Sign in to the GP application portal</h2>
			<p><a href="%s">Click here to sign in</a>. The link expires in %d minutes.</p>
			<p>If you did not request this link you can ignore this email.</p>
		</div>`, link, int(magicLinkTTL.Minutes()))

	if err := config.SendMail([]string{email}, "Your sign-in link", html); err != nil {
		log.Printf("magic link: failed to send to %s: %v", email, err)
	}

	c.JSON(http.StatusOK, genericResponse)
}

// VerifyMagicLink exchanges a raw magic-link token for a JWT.
func VerifyMagicLink(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var token models.AuthToken
	if err := config.DB.
		Where("token_hash = ? AND purpose = ?", hashToken(req.Token), models.TokenPurposeMagicLink).
		First(&token).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired link"})
		return
	}

	now := time.Now()
	if !token.IsUsable(now) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired link"})
		return
	}

	// Single use: burn the token before issuing the JWT.
	if err := config.DB.Model(&models.AuthToken{}).
		Where("token_id = ? AND used_at IS NULL", token.TokenID).
		Update("used_at", now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify link"})
		return
	}

	var user models.User
	if err := config.DB.Preload("Role").
		Where("user_id = ? AND delete_at IS NULL", token.UserID).
		First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	jwtToken, err := generateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:   jwtToken,
		User:    user,
		Message: "Login successful",
	})
}

// GetProfile returns current user profile
func GetProfile(c *gin.Context) {
	userID, _ := c.Get("userID")

	var user models.User
	if err := config.DB.Preload("Role").
		Where("user_id = ?", userID).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// generateToken creates JWT token
func generateToken(user models.User) (string, error) {
	expireHours, err := strconv.Atoi(os.Getenv("JWT_EXPIRE_HOURS"))
	if err != nil {
		expireHours = 24 // default 24 hours
	}

	claims := middleware.Claims{
		UserID: user.UserID,
		Email:  user.Email,
		RoleID: user.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
