package main

import (
	"context"
	"net/http"

	"product-inventory-api/internal/config"
	"product-inventory-api/internal/handlers"
	"product-inventory-api/pkg/lambda"
	"product-inventory-api/pkg/server"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

func init() {
	// Build the container during the Lambda init phase so the first invocation is warm.
	// A failure here is retried on the first request.
	if !config.IsServerlessMode() {
		return
	}
	if _, err := server.GetContainerManager().GetContainer(context.Background()); err != nil {
		logrus.WithError(err).Error("Failed to initialize container")
	}
}

type handlerFunc func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

func newHandler(cm *server.ContainerManager) handlerFunc {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		container, err := cm.GetContainer(ctx)
		if err != nil {
			logrus.WithError(err).Error("Container unavailable")
			return lambda.ToAPIGatewayResponse(handlers.JSONResponse(http.StatusInternalServerError,
				handlers.ErrorResponse{Message: handlers.MessageInternalError})), nil
		}

		req, err := lambda.FromAPIGatewayRequest(event)
		if err != nil {
			container.Logger.WithError(err).WithField("request_id", event.RequestContext.RequestID).
				Warn("Failed to decode request body")
			return lambda.ToAPIGatewayResponse(handlers.JSONResponse(http.StatusBadRequest,
				handlers.ErrorResponse{Message: handlers.MessageInvalidInput})), nil
		}

		return lambda.ToAPIGatewayResponse(container.Router.Route(ctx, req)), nil
	}
}

func main() {
	awslambda.Start(newHandler(server.GetContainerManager()))
}
