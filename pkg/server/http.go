package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "product-inventory-api/internal/docs"
	"product-inventory-api/internal/middleware"
	"product-inventory-api/pkg/lambda"
)

// NewHTTPEngine exposes the container's router over HTTP for local
// development. Every request that is not a docs request is converted into a
// lambda.Request, so the HTTP server and the Lambda share one dispatch path.
func NewHTTPEngine(c *Container) *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.StructuredLogger(c.Logger))
	engine.Use(middleware.CORS())
	engine.Use(middleware.RequestSizeLimit(middleware.DefaultMaxBodyBytes))
	if c.Config.RateLimit.RequestsPerSecond > 0 {
		engine.Use(middleware.RateLimiter(c.Logger, c.Config.RateLimit.RequestsPerSecond, c.Config.RateLimit.Burst))
	}

	if c.Config.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// All API paths go through the router, including its 404 fall-through
	engine.NoRoute(LambdaHandler(c.Router.Handler()))
	engine.NoMethod(LambdaHandler(c.Router.Handler()))

	return engine
}

// LambdaHandler adapts a lambda.HandlerFunc to gin
func LambdaHandler(handle lambda.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"Message": "Failed to read request body"})
			return
		}

		req := &lambda.Request{
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			Headers:     flatten(c.Request.Header),
			QueryParams: flatten(c.Request.URL.Query()),
			Body:        body,
			RequestID:   c.GetString(middleware.RequestIDKey),
		}

		resp := handle(c.Request.Context(), req)
		for k, v := range resp.Headers {
			c.Header(k, v)
		}
		c.Status(resp.StatusCode)
		if len(resp.Body) > 0 {
			_, _ = c.Writer.Write(resp.Body)
		}
	}
}

// flatten keeps the first value of every key, the way API Gateway fills
// queryStringParameters and headers
func flatten(values map[string][]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
