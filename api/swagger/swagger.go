package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Prof Pocket Sync API",
        "description": "Change-log sync and insight endpoints for the Prof Pocket client",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Account registration and login"},
        {"name": "Sync", "description": "Change-log push and pull"},
        {"name": "Insights", "description": "Server-side projections and class reports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "409": {"description": "Email taken", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/sync/push": {
            "post": {
                "tags": ["Sync"],
                "summary": "Push pending changes",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PushRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PushResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/sync/pull": {
            "get": {
                "tags": ["Sync"],
                "summary": "Pull changes since a watermark",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "since", "in": "query", "type": "integer", "description": "Watermark in epoch milliseconds"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PullResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/insights/project": {
            "post": {
                "tags": ["Insights"],
                "summary": "Project a score series",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProjectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ProjectionResult"}}
                }
            }
        },
        "/insights/class/{classId}": {
            "get": {
                "tags": ["Insights"],
                "summary": "Class report from the ledger",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ClassReport"}},
                    "404": {"description": "Unknown class", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"}
            },
            "required": ["email", "password", "name"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "SyncChange": {
            "type": "object",
            "properties": {
                "clientId": {"type": "string"},
                "entity": {"type": "string"},
                "entityId": {"type": "string"},
                "op": {"type": "string", "enum": ["upsert", "delete"]},
                "payload": {"type": "object"},
                "updatedAt": {"type": "integer"}
            },
            "required": ["entity", "entityId", "op", "updatedAt"]
        },
        "PushRequest": {
            "type": "object",
            "properties": {
                "changes": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SyncChange"}
                }
            },
            "required": ["changes"]
        },
        "PushResponse": {
            "type": "object",
            "properties": {
                "acceptedIds": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            }
        },
        "PullResponse": {
            "type": "object",
            "properties": {
                "changes": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SyncChange"}
                },
                "serverNow": {"type": "integer"}
            }
        },
        "ProjectionRequest": {
            "type": "object",
            "properties": {
                "evolutions": {
                    "type": "array",
                    "items": {"type": "number"}
                }
            },
            "required": ["evolutions"]
        },
        "ProjectionResult": {
            "type": "object",
            "properties": {
                "trend": {"type": "number"},
                "projectionNext": {"type": "number"},
                "recommendation": {"type": "string"}
            }
        },
        "ClassReport": {
            "type": "object",
            "properties": {
                "classId": {"type": "string"},
                "className": {"type": "string"},
                "generatedAt": {"type": "integer"},
                "last30Counts": {"type": "object"},
                "health": {"type": "integer"},
                "trend": {"type": "string", "enum": ["up", "down", "flat"]},
                "topNeeds": {"type": "array", "items": {"type": "object"}},
                "suggestions": {"type": "array", "items": {"type": "string"}},
                "series": {"type": "array", "items": {"type": "object"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/APIError"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
