package router

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"product-inventory-api/internal/handlers"
	"product-inventory-api/internal/middleware"
	"product-inventory-api/pkg/lambda"
)

// Paths served by the router
const (
	HealthPath   = "/health"
	ProductPath  = "/product"
	ProductsPath = "/products"
)

// Route identifies one entry of the dispatch table
type Route int

const (
	RouteNotFound Route = iota
	RouteHealth
	RouteGetProduct
	RouteGetProducts
	RouteSaveProduct
	RouteEditProduct
	RouteDeleteProduct
)

var routeNames = map[Route]string{
	RouteNotFound:      "NotFound",
	RouteHealth:        "Health",
	RouteGetProduct:    "GetProduct",
	RouteGetProducts:   "GetProducts",
	RouteSaveProduct:   "SaveProduct",
	RouteEditProduct:   "EditProduct",
	RouteDeleteProduct: "DeleteProduct",
}

func (r Route) String() string {
	if name, ok := routeNames[r]; ok {
		return name
	}
	return "Unknown"
}

type routeKey struct {
	method string
	path   string
}

var routeTable = map[routeKey]Route{
	{http.MethodGet, HealthPath}:     RouteHealth,
	{http.MethodGet, ProductPath}:    RouteGetProduct,
	{http.MethodPost, ProductPath}:   RouteSaveProduct,
	{http.MethodPatch, ProductPath}:  RouteEditProduct,
	{http.MethodDelete, ProductPath}: RouteDeleteProduct,
	{http.MethodGet, ProductsPath}:   RouteGetProducts,
}

// Resolve maps a method and an exact path onto a Route
func Resolve(method, path string) Route {
	if route, ok := routeTable[routeKey{method, path}]; ok {
		return route
	}
	return RouteNotFound
}

// Router dispatches requests to the product operations
type Router struct {
	products *handlers.ProductHandler
	logger   *logrus.Logger
}

// New creates a router over the product handler
func New(products *handlers.ProductHandler, logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Router{products: products, logger: logger}
}

// Route handles one request and always returns a response
func (r *Router) Route(ctx context.Context, req *lambda.Request) *lambda.Response {
	start := time.Now()
	middleware.LogEvent(r.logger, req)
	route := Resolve(req.Method, req.Path)

	var resp *lambda.Response
	switch route {
	case RouteHealth:
		resp = handlers.BuildResponse(handlers.Health(ctx, req))
	case RouteGetProduct:
		resp = handlers.BuildResponse(r.products.GetProduct(ctx, req))
	case RouteGetProducts:
		resp = handlers.BuildResponse(r.products.GetProducts(ctx, req))
	case RouteSaveProduct:
		resp = handlers.BuildResponse(r.products.SaveProduct(ctx, req))
	case RouteEditProduct:
		resp = handlers.BuildResponse(r.products.EditProduct(ctx, req))
	case RouteDeleteProduct:
		resp = handlers.BuildResponse(r.products.DeleteProduct(ctx, req))
	default:
		resp = handlers.NotFoundResponse()
	}

	middleware.LogInvocation(r.logger, req, route.String(), resp.StatusCode, time.Since(start))
	return resp
}

// Handler exposes the router as a lambda.HandlerFunc
func (r *Router) Handler() lambda.HandlerFunc {
	return r.Route
}
