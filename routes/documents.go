package routes

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"brandguard-platform/internal/ai"
	"brandguard-platform/internal/config"
	"brandguard-platform/internal/docstore"
	"brandguard-platform/internal/queue"
	"brandguard-platform/internal/registry"
	"brandguard-platform/middleware"
	"brandguard-platform/models"
	"brandguard-platform/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// SetupDocumentRoutes wires corpus management under each client. Small JSON
// documents are embedded inline; file uploads and URL imports are queued.
func SetupDocumentRoutes(router *gin.Engine, cfg *config.Config, reg registry.Registry, store docstore.Store, embedder ai.Embedder, queueClient *asynq.Client, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	docs := router.Group("/clients/:client_id/documents")
	docs.Use(authMiddleware.RequireAuth())
	docs.Use(roleMiddleware.ClientGuard())
	docs.Use(roleMiddleware.RequireClientAccess())

	docs.POST("", handleIngestDocument(reg, store, embedder))
	docs.POST("/upload", handleAsyncUpload(cfg, reg, queueClient))
	docs.POST("/import-url", handleImportURL(reg, queueClient))
	docs.GET("/count", handleDocumentCount(store))
	docs.DELETE("/:doc_id", handleDeleteDocument(store))
}

// handleIngestDocument embeds and stores one document synchronously. The
// payload is already plain text; extraction happened on the caller's side.
func handleIngestDocument(reg registry.Registry, store docstore.Store, embedder ai.Embedder) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("client_id")

		var req models.IngestDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid document data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		if _, err := reg.Get(ctx, clientID); err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}

		embedding, err := embedder.Embed(ctx, req.Content)
		if err != nil {
			utils.RespondWithPipelineError(c, fmt.Errorf("%w: %v", ai.ErrGenerationUnavailable, err))
			return
		}

		doc := models.Document{
			DocID:      req.DocID,
			ClientID:   clientID,
			DocType:    req.DocType,
			Content:    req.Content,
			SourceURL:  req.SourceURL,
			Embedding:  embedding,
			IngestedAt: time.Now().UTC(),
		}

		if err := store.Ingest(ctx, doc); err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"doc_id":      doc.DocID,
			"client_id":   doc.ClientID,
			"ingested_at": doc.IngestedAt,
		})
	}
}

// handleAsyncUpload accepts a PDF, HTML or text file, stages it on disk and
// queues extraction. The response returns before any model work happens.
func handleAsyncUpload(cfg *config.Config, reg registry.Registry, queueClient *asynq.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("client_id")

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		if _, err := reg.Get(ctx, clientID); err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}

		if err := c.Request.ParseMultipartForm(cfg.MaxFileSize); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "file_too_large", "File size exceeds maximum limit", nil)
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "no_file", "No file provided", nil)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !allowedContentType(cfg, contentType) {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid_file_type",
				"Unsupported content type", gin.H{"content_type": contentType})
			return
		}
		if header.Size > cfg.MaxFileSize {
			utils.RespondWithError(c, http.StatusBadRequest, "file_too_large", "File size exceeds maximum limit", nil)
			return
		}

		docID := c.PostForm("doc_id")
		if docID == "" {
			docID = uuid.NewString()
		}
		docType := c.PostForm("doc_type")

		uploadDir := filepath.Join(cfg.FileStorageDir, "uploads", clientID)
		if err := os.MkdirAll(uploadDir, 0755); err != nil {
			utils.RespondWithInternalError(c, "Failed to create upload directory", nil)
			return
		}

		filePath := filepath.Join(uploadDir, fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(header.Filename)))
		dst, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to open destination", nil)
			return
		}
		defer dst.Close()
		if _, err := io.Copy(dst, io.LimitReader(file, cfg.MaxFileSize)); err != nil {
			utils.RespondWithInternalError(c, "Failed to save file", nil)
			return
		}

		task, err := queue.NewDocumentProcessTask(clientID, docID, docType, filePath, contentType)
		if err != nil {
			os.Remove(filePath)
			utils.RespondWithInternalError(c, "Failed to create processing task", nil)
			return
		}

		info, err := queueClient.Enqueue(task)
		if err != nil {
			os.Remove(filePath)
			utils.RespondWithInternalError(c, "Failed to enqueue processing task", nil)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"message":   "Document accepted for processing",
			"doc_id":    docID,
			"task_id":   info.ID,
			"filename":  header.Filename,
			"size":      header.Size,
			"client_id": clientID,
		})
	}
}

func handleImportURL(reg registry.Registry, queueClient *asynq.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("client_id")

		var req models.ImportURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid import request", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		if _, err := reg.Get(ctx, clientID); err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}

		docID := uuid.NewString()
		task, err := queue.NewURLImportTask(clientID, docID, req.DocType, req.URL)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create import task", nil)
			return
		}

		info, err := queueClient.Enqueue(task)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue import task", nil)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"message":   "URL accepted for import",
			"doc_id":    docID,
			"task_id":   info.ID,
			"url":       req.URL,
			"client_id": clientID,
		})
	}
}

func handleDocumentCount(store docstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("client_id")

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		count, err := store.Count(ctx, clientID)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to count documents", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"client_id": clientID,
			"documents": count,
		})
	}
}

func handleDeleteDocument(store docstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("client_id")
		docID := c.Param("doc_id")

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		if err := store.Delete(ctx, clientID, docID); err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":   "Document deleted",
			"doc_id":    docID,
			"client_id": clientID,
		})
	}
}

func allowedContentType(cfg *config.Config, contentType string) bool {
	for _, allowed := range cfg.AllowedTypes {
		if strings.Contains(contentType, strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}
