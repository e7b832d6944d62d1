package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"brandguard-platform/internal/auth"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Claims are set by the auth guard inside the route group, after the
// globally installed EnrichTrace has already started running. The span must
// still pick up the tenant identity on the way out.
func TestEnrichTraceRecordsClaimsSetByRouteGroup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		ctx, span := provider.Tracer("test").Start(c.Request.Context(), "request")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	router.Use(EnrichTrace())

	group := router.Group("/clients/:client_id")
	group.Use(func(c *gin.Context) {
		c.Set("claims", &auth.Claims{
			UserID:   "client:acme",
			ClientID: "acme",
			Role:     "client",
		})
		c.Next()
	})
	group.POST("/generate", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clients/acme/generate", nil)
	router.ServeHTTP(w, req)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}

	if got := attrs["tenant.id"].AsString(); got != "acme" {
		t.Fatalf("tenant.id = %q, want %q", got, "acme")
	}
	if got := attrs["user.id"].AsString(); got != "client:acme" {
		t.Fatalf("user.id = %q, want %q", got, "client:acme")
	}
	if got := attrs["user.role"].AsString(); got != "client" {
		t.Fatalf("user.role = %q, want %q", got, "client")
	}
	if got := attrs["http.response.status_code"].AsInt64(); got != http.StatusOK {
		t.Fatalf("status attribute = %d, want %d", got, http.StatusOK)
	}
}
