// Package docs holds the OpenAPI description of the product inventory API
// served by the development server.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Reports that the service is up",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.HealthResponse"}
                    }
                }
            }
        },
        "/product": {
            "get": {
                "description": "Get a single product by its productId",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get a product",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Product ID",
                        "name": "productId",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "object", "additionalProperties": true}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            },
            "post": {
                "description": "Create or fully replace a product. The body is stored as given.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Save a product",
                "parameters": [
                    {
                        "description": "Product with a productId",
                        "name": "product",
                        "in": "body",
                        "required": true,
                        "schema": {"type": "object", "additionalProperties": true}
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {"$ref": "#/definitions/handlers.OperationResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            },
            "delete": {
                "description": "Delete a product and return its last stored attributes. Deleting a missing product succeeds with an empty DeletedItem.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Delete a product",
                "parameters": [
                    {
                        "description": "Product to delete",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.DeleteProductRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.OperationResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            },
            "patch": {
                "description": "Set a single attribute of an existing product",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Edit a product attribute",
                "parameters": [
                    {
                        "description": "Attribute update",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.EditProductRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.OperationResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        },
        "/products": {
            "get": {
                "description": "Get every product in the inventory, following scan pages to the end",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.ProductsResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "504": {
                        "description": "Gateway Timeout",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "Errors": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/models.ValidationError"}
                },
                "Message": {"type": "string"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "handlers.OperationResponse": {
            "type": "object",
            "properties": {
                "DeletedItem": {},
                "Item": {},
                "Message": {"type": "string"},
                "Operation": {"type": "string"},
                "UpdatedAttributes": {}
            }
        },
        "handlers.ProductsResponse": {
            "type": "object",
            "properties": {
                "products": {
                    "type": "array",
                    "items": {"type": "object", "additionalProperties": true}
                }
            }
        },
        "models.DeleteProductRequest": {
            "type": "object",
            "required": ["productId"],
            "properties": {
                "productId": {"type": "string", "maxLength": 1024}
            }
        },
        "models.EditProductRequest": {
            "type": "object",
            "required": ["productId", "updateKey"],
            "properties": {
                "productId": {"type": "string", "maxLength": 1024},
                "updateKey": {"type": "string"},
                "updateValue": {}
            }
        },
        "models.ValidationError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"},
                "value": {}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8081",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Product Inventory API",
	Description:      "CRUD operations over a single-table product inventory",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
