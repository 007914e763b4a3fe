package lambda

import (
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAPIGatewayRequest(t *testing.T) {
	req, err := FromAPIGatewayRequest(events.APIGatewayProxyRequest{
		HTTPMethod:            "patch",
		Path:                  "/product",
		QueryStringParameters: map[string]string{"productId": "p1"},
		Body:                  `{"productId":"p1"}`,
		RequestContext:        events.APIGatewayProxyRequestContext{RequestID: "req-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "patch", req.Method, "method is passed through as sent")
	assert.Equal(t, "/product", req.Path)
	assert.Equal(t, "p1", req.QueryParam("productId"))
	assert.Equal(t, `{"productId":"p1"}`, string(req.Body))
	assert.Equal(t, "req-1", req.RequestID)
}

func TestFromAPIGatewayRequest_Base64(t *testing.T) {
	req, err := FromAPIGatewayRequest(events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Body:            "eyJwcm9kdWN0SWQiOiJwMiJ9",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"productId":"p2"}`, string(req.Body))

	_, err = FromAPIGatewayRequest(events.APIGatewayProxyRequest{Body: "!!", IsBase64Encoded: true})
	assert.Error(t, err)
}

func TestQueryParam_NilMap(t *testing.T) {
	assert.Equal(t, "", (&Request{}).QueryParam("productId"))
}

func TestToAPIGatewayResponse(t *testing.T) {
	resp := ToAPIGatewayResponse(&Response{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(`{"status":"ok"}`),
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"status":"ok"}`, resp.Body)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestToAPIGatewayResponse_Nil(t *testing.T) {
	resp := ToAPIGatewayResponse(nil)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.JSONEq(t, `{"Message":"Internal server error"}`, resp.Body)
}
