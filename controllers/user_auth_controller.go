package controllers

import (
	"time"

	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
	"github.com/nivedh-07/TechCare/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// registrationSessionKey is where the pending registration lives between
// the register and verify-otp requests.
const registrationSessionKey = "registration"

// RegistrationData is kept in the session between registration and OTP
// verification, so the verify and resend endpoints work without the client
// re-supplying the email.
type RegistrationData struct {
	Username string
	Email    string
}

// registrationEmail resolves the email for the OTP endpoints: an explicit
// email in the request wins, otherwise the pending registration session.
func registrationEmail(c *gin.Context, email string) string {
	if email != "" {
		return email
	}
	session := sessions.Default(c)
	if data, ok := session.Get(registrationSessionKey).(RegistrationData); ok {
		return data.Email
	}
	return ""
}

// RegisterRequest is the POST body for user registration
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
}

// RegisterUser handles POST /register: creates the account and its billing
// profile, then emails a verification OTP.
func RegisterUser(c *gin.Context) {
	utils.LogInfo("RegisterUser called")

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid registration request", err.Error())
		return
	}

	var existing models.User
	if err := config.DB.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error; err == nil {
		utils.LogError("Registration rejected, email or username taken: %s", req.Email)
		utils.Conflict(c, "An account with this email or username already exists", nil)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError("Failed to hash password: %v", err)
		utils.InternalServerError(c, "Registration failed", nil)
		return
	}

	otp := utils.GenerateOTP()
	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  hash,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		OTP:       otp,
		OTPExpiry: time.Now().Add(15 * time.Minute),
	}
	if err := config.DB.Create(&user).Error; err != nil {
		utils.LogError("Failed to create user: %v", err)
		utils.InternalServerError(c, "Registration failed", nil)
		return
	}

	name := req.FirstName + " " + req.LastName
	if req.FirstName == "" && req.LastName == "" {
		name = req.Username
	}
	client := models.Client{
		UserID:  user.ID,
		Name:    name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
	}
	if err := config.DB.Create(&client).Error; err != nil {
		utils.LogError("Failed to create billing profile for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Registration failed", nil)
		return
	}
	utils.LogInfo("Created user %d with billing profile %d", user.ID, client.ID)

	session := sessions.Default(c)
	session.Set(registrationSessionKey, RegistrationData{Username: user.Username, Email: user.Email})
	if err := session.Save(); err != nil {
		utils.LogError("Failed to save registration session for user %d: %v", user.ID, err)
	}

	if err := utils.SendOTP(user.Email, otp); err != nil {
		utils.LogError("Failed to send OTP to %s: %v", user.Email, err)
	}

	utils.Created(c, "Registration successful. Please verify your email with the OTP sent to you.", gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// VerifyOTPRequest is the POST body for email verification. Email may be
// omitted when the registration session is still live.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
	OTP   string `json:"otp" binding:"required"`
}

// VerifyOTP handles POST /verify-otp
func VerifyOTP(c *gin.Context) {
	utils.LogInfo("VerifyOTP called")

	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	email := registrationEmail(c, req.Email)
	if email == "" {
		utils.BadRequest(c, "Email is required when no registration session exists", nil)
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if user.IsVerified {
		utils.Success(c, "Email already verified", nil)
		return
	}

	if user.OTP != req.OTP || time.Now().After(user.OTPExpiry) {
		utils.LogError("Invalid or expired OTP for user %d", user.ID)
		utils.BadRequest(c, "Invalid or expired OTP", nil)
		return
	}

	if err := config.DB.Model(&user).Updates(map[string]interface{}{
		"is_verified": true,
		"otp":         "",
	}).Error; err != nil {
		utils.LogError("Failed to mark user %d verified: %v", user.ID, err)
		utils.InternalServerError(c, "Verification failed", nil)
		return
	}
	utils.LogInfo("User %d verified their email", user.ID)

	// The pending registration is complete
	session := sessions.Default(c)
	session.Delete(registrationSessionKey)
	if err := session.Save(); err != nil {
		utils.LogError("Failed to clear registration session for user %d: %v", user.ID, err)
	}

	utils.Success(c, "Email verified successfully. You can now log in.", nil)
}

// LoginRequest is the POST body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginUser handles POST /login
func LoginUser(c *gin.Context) {
	utils.LogInfo("LoginUser called")

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid login request", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		utils.LogError("Failed login attempt for %s", req.Email)
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if user.IsBlocked {
		utils.Forbidden(c, "Account is blocked")
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.LogError("Failed to generate token for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Login failed", nil)
		return
	}

	config.DB.Model(&user).Update("last_login_at", time.Now())
	utils.LogInfo("User %d logged in", user.ID)

	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":          user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"is_verified": user.IsVerified,
		},
	})
}

// ResendOTP handles POST /resend-otp
func ResendOTP(c *gin.Context) {
	utils.LogInfo("ResendOTP called")

	var req struct {
		Email string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	email := registrationEmail(c, req.Email)
	if email == "" {
		utils.BadRequest(c, "Email is required when no registration session exists", nil)
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if user.IsVerified {
		utils.Success(c, "Email already verified", nil)
		return
	}

	otp := utils.GenerateOTP()
	if err := config.DB.Model(&user).Updates(map[string]interface{}{
		"otp":        otp,
		"otp_expiry": time.Now().Add(15 * time.Minute),
	}).Error; err != nil {
		utils.InternalServerError(c, "Failed to refresh OTP", nil)
		return
	}

	if err := utils.SendOTP(user.Email, otp); err != nil {
		utils.LogError("Failed to resend OTP to %s: %v", user.Email, err)
		utils.InternalServerError(c, "Failed to send OTP email", nil)
		return
	}

	utils.Success(c, "A new OTP has been sent to your email", nil)
}
