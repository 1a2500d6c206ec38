package http

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/fieldops-api/internal/application/dto"
	"github.com/jhoicas/fieldops-api/pkg/config"
	"github.com/jhoicas/fieldops-api/pkg/jwt"
)

// AuthHandler emite tokens de administrador contra la clave configurada.
type AuthHandler struct {
	jwtCfg       config.JWTConfig
	adminKeyHash string
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(jwtCfg config.JWTConfig, adminKeyHash string) *AuthHandler {
	return &AuthHandler{jwtCfg: jwtCfg, adminKeyHash: adminKeyHash}
}

// Login godoc
// @Summary      Iniciar sesión de administrador
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "admin_key"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.AdminKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "admin_key es requerido"})
	}
	if h.adminKeyHash == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NOT_CONFIGURED", Message: "acceso administrativo deshabilitado"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.adminKeyHash), []byte(in.AdminKey)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	}

	token, err := jwt.Generate(h.jwtCfg.Secret, "admin", "admin", h.jwtCfg.Issuer, h.jwtCfg.Expiration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.LoginResponse{Token: token, ExpiresIn: h.jwtCfg.Expiration * 60})
}
