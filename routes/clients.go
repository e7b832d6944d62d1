package routes

import (
	"net/http"
	"time"

	"brandguard-platform/internal/ai"
	"brandguard-platform/internal/auth"
	"brandguard-platform/internal/registry"
	"brandguard-platform/middleware"
	"brandguard-platform/models"
	"brandguard-platform/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SetupClientRoutes wires profile management. Registration and removal are
// admin operations; a client token may read and update only its own profile.
func SetupClientRoutes(router *gin.Engine, reg registry.Registry, quotas *ai.QuotaStore, rdb *redis.Client, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	clients := router.Group("/clients")
	clients.Use(authMiddleware.RequireAuth())

	clients.POST("", roleMiddleware.AdminGuard(), handleRegisterClient(reg))
	clients.GET("", roleMiddleware.AdminGuard(), handleListClients(reg))
	clients.GET("/:client_id", roleMiddleware.ClientGuard(), roleMiddleware.RequireClientAccess(), handleGetClient(reg))
	clients.PUT("/:client_id", roleMiddleware.ClientGuard(), roleMiddleware.RequireClientAccess(), handleUpdateClient(reg))
	clients.DELETE("/:client_id", roleMiddleware.AdminGuard(), handleDeregisterClient(reg, rdb))
	clients.GET("/:client_id/quota", roleMiddleware.ClientGuard(), roleMiddleware.RequireClientAccess(), handleQuotaStatus(quotas))
}

func handleRegisterClient(reg registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RegisterProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid profile data", gin.H{"error": err.Error()})
			return
		}

		now := time.Now().UTC()
		profile := models.ClientProfile{
			ClientID:         req.ClientID,
			BrandVoice:       req.BrandVoice,
			Tone:             req.Tone,
			Lexicon:          req.Lexicon,
			AvoidTerms:       req.AvoidTerms,
			DeliverableTypes: req.DeliverableTypes,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		if err := reg.Register(ctx, profile); err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}

		c.JSON(http.StatusCreated, profile)
	}
}

func handleListClients(reg registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		profiles, err := reg.List(ctx)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list clients", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"clients": profiles,
			"total":   len(profiles),
		})
	}
}

func handleGetClient(reg registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		profile, err := reg.Get(ctx, c.Param("client_id"))
		if err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}

		c.JSON(http.StatusOK, profile)
	}
}

// handleUpdateClient replaces the profile wholesale. Omitted optional fields
// clear their previous values; there is no field-level merge.
func handleUpdateClient(reg registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid profile data", gin.H{"error": err.Error()})
			return
		}

		profile := models.ClientProfile{
			ClientID:         c.Param("client_id"),
			BrandVoice:       req.BrandVoice,
			Tone:             req.Tone,
			Lexicon:          req.Lexicon,
			AvoidTerms:       req.AvoidTerms,
			DeliverableTypes: req.DeliverableTypes,
			UpdatedAt:        time.Now().UTC(),
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		if err := reg.Update(ctx, profile); err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}

		c.JSON(http.StatusOK, profile)
	}
}

func handleDeregisterClient(reg registry.Registry, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("client_id")

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		if err := reg.Deregister(ctx, clientID); err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}

		// Stale tokens for the removed tenant stop working immediately.
		_ = auth.RevokeAllUserTokens("client:"+clientID, rdb)

		c.JSON(http.StatusOK, gin.H{"message": "Client deregistered", "client_id": clientID})
	}
}

func handleQuotaStatus(quotas *ai.QuotaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		quota, err := quotas.Status(ctx, c.Param("client_id"))
		if err != nil {
			utils.RespondWithNotFound(c, "No quota record for client")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"client_id":         quota.ClientID,
			"daily_token_limit": quota.DailyTokenLimit,
			"tokens_used_today": quota.TokensUsedToday,
			"requests_today":    quota.RequestsToday,
			"last_reset_date":   quota.LastResetDate,
		})
	}
}
