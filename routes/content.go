package routes

import (
	"net/http"
	"time"

	"brandguard-platform/internal/ai"
	"brandguard-platform/internal/pipeline"
	"brandguard-platform/internal/telemetry"
	"brandguard-platform/middleware"
	"brandguard-platform/models"
	"brandguard-platform/services"
	"brandguard-platform/utils"

	"github.com/gin-gonic/gin"
)

type GenerateRequest struct {
	Query           string   `json:"query" binding:"required"`
	DeliverableType string   `json:"deliverable_type" binding:"required"`
	TopK            int      `json:"top_k,omitempty"`
	MaxTokens       int      `json:"max_tokens,omitempty"`
	Temperature     *float32 `json:"temperature,omitempty"`
}

type RetrieveRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k,omitempty"`
}

// SetupContentRoutes wires generation and retrieval under each client, plus
// the admin roster export.
func SetupContentRoutes(router *gin.Engine, pipe *pipeline.Pipeline, quotas *ai.QuotaStore, exporter *services.ExportService, metrics *telemetry.Metrics, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	content := router.Group("/clients/:client_id")
	content.Use(authMiddleware.RequireAuth())
	content.Use(roleMiddleware.ClientGuard())
	content.Use(roleMiddleware.RequireClientAccess())

	content.POST("/generate", handleGenerate(pipe, quotas, metrics))
	content.POST("/retrieve", handleRetrieve(pipe))

	admin := router.Group("/admin")
	admin.Use(authMiddleware.RequireAuth())
	admin.Use(roleMiddleware.AdminGuard())
	admin.GET("/export", handleExportClients(exporter))
}

// handleGenerate runs the full pipeline. The quota is consumed with the
// request's token ceiling before any model call; a rejected reservation
// never reaches the model.
func handleGenerate(pipe *pipeline.Pipeline, quotas *ai.QuotaStore, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("client_id")

		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid generation request", gin.H{"error": err.Error()})
			return
		}

		maxTokens := req.MaxTokens
		if maxTokens <= 0 {
			maxTokens = pipeline.DefaultMaxTokens
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		if quotas != nil {
			if err := quotas.Consume(ctx, clientID, maxTokens); err != nil {
				utils.RespondWithPipelineError(c, err)
				return
			}
		}

		start := time.Now()
		result, err := pipe.GenerateContent(ctx, models.GenerationRequest{
			Query:           req.Query,
			ClientID:        clientID,
			DeliverableType: req.DeliverableType,
			TopK:            req.TopK,
			MaxTokens:       maxTokens,
			Temperature:     req.Temperature,
		})

		if metrics != nil {
			status := "success"
			if err != nil {
				status = "error"
			}
			metrics.RecordGeneration(time.Since(start).Seconds(), req.DeliverableType, status, len(result.Sources))
			if err == nil {
				metrics.RecordTokensUsed(int64(result.TokensUsed), "gemini", clientID)
			}
		}

		if err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// handleRetrieve exposes retrieval without generation, useful for debugging
// why a passage did or did not ground a deliverable.
func handleRetrieve(pipe *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("client_id")

		var req RetrieveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid retrieval request", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		passages, err := pipe.Retrieve(ctx, req.Query, clientID, req.TopK)
		if err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"client_id": clientID,
			"passages":  passages,
			"count":     len(passages),
		})
	}
}

func handleExportClients(exporter *services.ExportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		format := c.DefaultQuery("format", "json")

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		data, err := exporter.BuildExport(ctx, format)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to build export", gin.H{"error": err.Error()})
			return
		}

		if err := exporter.StreamExport(c, data, format); err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
		}
	}
}
