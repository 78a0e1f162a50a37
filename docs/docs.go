// Package docs registers the OpenAPI description served under /swagger.
// Regenerate the full operation list with `swag init -g cmd/server/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "email": "support@flyva.example"
        },
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
                "description": "Check the health status of the API and its dependencies",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Health status", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "description": "Exchange the admin credentials for a 24h bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Admin login",
                "parameters": [
                    {"description": "Admin credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.tokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/server.simpleResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/server.simpleResponse"}}
                }
            }
        },
        "/api/flight/filter": {
            "get": {
                "description": "Prices every matching route for the requested dates, cheapest first. The cheapest 5% are flagged as recommended; no match gives an empty page.",
                "produces": ["application/json"],
                "tags": ["Flights"],
                "summary": "Search fares",
                "parameters": [
                    {"type": "string", "description": "one-way or round-trip (default)", "name": "type", "in": "query"},
                    {"type": "integer", "description": "Departure airport id", "name": "from_id", "in": "query"},
                    {"type": "integer", "description": "Arrival airport id", "name": "to_id", "in": "query"},
                    {"type": "string", "description": "Departure airport code or name", "name": "from", "in": "query"},
                    {"type": "string", "description": "Arrival airport code or name", "name": "to", "in": "query"},
                    {"type": "string", "description": "Comma separated airline ids", "name": "airlines_id", "in": "query"},
                    {"type": "string", "description": "Comma separated airline short names", "name": "airlines", "in": "query"},
                    {"type": "number", "description": "Lowest final price", "name": "minPrice", "in": "query"},
                    {"type": "number", "description": "Highest final price", "name": "maxPrice", "in": "query"},
                    {"type": "string", "description": "Departure date, YYYY-MM-DD", "name": "depDateStr", "in": "query"},
                    {"type": "string", "description": "Return date, YYYY-MM-DD", "name": "arrDateStr", "in": "query"},
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.simpleResponse"}}
                }
            }
        }
    },
    "definitions": {
        "server.loginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "admin@admin.com"},
                "password": {"type": "string", "example": "secret123"}
            }
        },
        "server.simpleResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Operation successful"},
                "success": {"type": "boolean", "example": true}
            }
        },
        "server.tokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Flyva Travel API",
	Description:      "Flight fare search, bookings, quotes and site content for the Flyva travel agency",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
