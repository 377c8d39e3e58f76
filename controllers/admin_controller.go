package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"voxarena/middlewares"
	"voxarena/models"
	"voxarena/utils"
)

type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Create(ctx context.Context, a *models.Admin) error
}

// AdminSignupRequest creates another CMS account
type AdminSignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
	Role     string `json:"role" binding:"required,oneof=admin editor"`
}

// AdminLoginRequest represents the login request
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AdminController struct {
	admins AdminStore
	log    logrus.FieldLogger
}

func NewAdminController(admins AdminStore, log logrus.FieldLogger) *AdminController {
	return &AdminController{admins: admins, log: log}
}

func adminBody(a *models.Admin) gin.H {
	return gin.H{
		"id":    a.ID.Hex(),
		"email": a.Email,
		"name":  a.Name,
		"role":  a.Role,
	}
}

// Login checks the password and issues an access token.
func (h *AdminController) Login(ctx *gin.Context) {
	var request AdminLoginRequest
	if !bindJSON(ctx, &request) {
		return
	}

	admin, err := h.admins.GetByEmail(ctx.Request.Context(), request.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		respondError(ctx, h.log, err)
		return
	}

	if !utils.CheckPasswordHash(request.Password, admin.Password) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, expiresAt, err := utils.GenerateJWTToken(admin.ID.Hex(), admin.Email, admin.Role)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token", "message": err.Error()})
		return
	}

	h.log.WithField("admin", admin.Email).Info("Admin logged in")
	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Admin login successful",
		"accessToken": token,
		"expiresAt":   expiresAt,
		"admin":       adminBody(admin),
	})
}

// Signup creates an admin or editor account. Only admins reach it.
func (h *AdminController) Signup(ctx *gin.Context) {
	var request AdminSignupRequest
	if !bindJSON(ctx, &request) {
		return
	}

	hashed, err := utils.HashPassword(request.Password)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	name := request.Name
	if name == "" {
		name = utils.ExtractNameFromEmail(request.Email)
	}

	admin := &models.Admin{Email: request.Email, Password: hashed, Role: request.Role, Name: name}
	if err := h.admins.Create(ctx.Request.Context(), admin); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Admin already exists"})
			return
		}
		respondError(ctx, h.log, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"admin": adminBody(admin)})
}

// Me returns the authenticated admin.
func (h *AdminController) Me(ctx *gin.Context) {
	admin, err := h.admins.GetByEmail(ctx.Request.Context(), ctx.GetString(middlewares.AdminEmailKey))
	if err != nil {
		respondError(ctx, h.log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"admin": adminBody(admin)})
}
