package routes

import (
	"net/http"
	"time"

	"brandguard-platform/internal/auth"
	"brandguard-platform/internal/config"
	"brandguard-platform/internal/registry"
	"brandguard-platform/middleware"
	"brandguard-platform/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ClientTokenRequest struct {
	ClientID string `json:"client_id" binding:"required"`
}

// SetupAuthRoutes wires admin login, client token issuance and session
// management. The admin identity comes from environment configuration; client
// tokens are minted by the admin for each registered tenant.
func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, rdb *redis.Client, reg registry.Registry, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	authGroup := router.Group("/auth")

	authGroup.POST("/login", func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		if cfg.AdminPassHash == "" {
			utils.RespondWithInternalError(c, "Admin credentials not configured", nil)
			return
		}

		if req.Username != cfg.AdminUser || !utils.CheckPassword(req.Password, cfg.AdminPassHash) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "invalid_credentials",
				"message":    "Invalid username or password",
			})
			return
		}

		tokenPair, err := auth.IssueTokenPair(req.Username, "", "admin", rdb)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to issue tokens", gin.H{"error": err.Error()})
			return
		}

		setSessionCookies(c, cfg, tokenPair)
		c.JSON(http.StatusOK, tokenPair)
	})

	// Admin mints a client-scoped token after registering the tenant. Client
	// tokens can only touch their own profile, documents and generations.
	authGroup.POST("/client-token",
		authMiddleware.RequireAuth(),
		roleMiddleware.AdminGuard(),
		func(c *gin.Context) {
			var req ClientTokenRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
				return
			}

			ctx, cancel := utils.WithTimeout(c.Request.Context())
			defer cancel()

			if _, err := reg.Get(ctx, req.ClientID); err != nil {
				utils.RespondWithPipelineError(c, err)
				return
			}

			tokenPair, err := auth.IssueTokenPair("client:"+req.ClientID, req.ClientID, "client", rdb)
			if err != nil {
				utils.RespondWithInternalError(c, "Failed to issue tokens", gin.H{"error": err.Error()})
				return
			}

			c.JSON(http.StatusOK, tokenPair)
		})

	authGroup.POST("/refresh", func(c *gin.Context) {
		refreshToken, err := c.Cookie("refresh_token")
		if refreshToken == "" || err != nil {
			refreshToken = utils.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		}
		if refreshToken == "" {
			utils.RespondWithUnauthorized(c, "Refresh token required")
			return
		}

		claims, err := auth.ValidateRefreshToken(refreshToken, rdb)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid or expired refresh token")
			return
		}

		// Rotate the refresh token on every use.
		_ = auth.RevokeToken(claims.ID, true, rdb)

		tokenPair, err := auth.IssueTokenPair(claims.UserID, claims.ClientID, claims.Role, rdb)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to issue tokens", gin.H{"error": err.Error()})
			return
		}

		setSessionCookies(c, cfg, tokenPair)
		c.JSON(http.StatusOK, tokenPair)
	})

	authGroup.POST("/logout", authMiddleware.RequireAuth(), func(c *gin.Context) {
		if claims, exists := c.Get("claims"); exists {
			if cl, ok := claims.(*auth.Claims); ok {
				_ = auth.RevokeToken(cl.ID, false, rdb)
			}
		}
		if refreshToken, err := c.Cookie("refresh_token"); err == nil && refreshToken != "" {
			if claims, err := auth.ValidateRefreshToken(refreshToken, rdb); err == nil {
				_ = auth.RevokeToken(claims.ID, true, rdb)
			}
		}

		secure := cfg.GinMode == "release"
		c.SetCookie("access_token", "", -1, "/", "", secure, true)
		c.SetCookie("refresh_token", "", -1, "/", "", secure, true)

		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	})
}

func setSessionCookies(c *gin.Context, cfg *config.Config, tokenPair *auth.TokenPair) {
	secure := cfg.GinMode == "release"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", tokenPair.AccessToken, int(time.Hour.Seconds()), "/", "", secure, true)
	c.SetCookie("refresh_token", tokenPair.RefreshToken, int((7 * 24 * time.Hour).Seconds()), "/", "", secure, true)
}
