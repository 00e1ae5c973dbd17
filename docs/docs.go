// Package docs registers the swagger document served at /swagger/. It is maintained by hand
// alongside the swag annotations in cmd and handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Exchange admin credentials for a bearer token",
                "parameters": [
                    {"description": "Admin credentials", "name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.LoginInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Invalid credentials", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "Admin login disabled", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/data": {
            "get": {
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Whole aggregate document",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Aggregate not written yet", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Read or parse failure", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "The current aggregate is copied to a timestamped backup before it is overwritten.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Replace the aggregate document",
                "parameters": [
                    {"description": "Replacement aggregate", "name": "document", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Body is not a JSON object", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Missing or invalid token", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Write failure", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/games/{day}": {
            "get": {
                "description": "day accepts the day number (\"1\"), the day key (\"第一天\") or the fragment name (\"10\").",
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Raw schedule of one day",
                "parameters": [{"type": "string", "description": "Day", "name": "day", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "array", "items": {"$ref": "#/definitions/models.EventDescriptor"}}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/players/{id}": {
            "get": {
                "description": "id is the event name or a legacy roster file id.",
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Roster of one event",
                "parameters": [{"type": "string", "description": "Roster id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PlayerList"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/schedule/{day}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Schedule of one day grouped by track/field and morning/afternoon",
                "parameters": [{"type": "string", "description": "Day number, day key or fragment name", "name": "day", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Schedule"}},
                    "404": {"description": "Unknown day", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/rosters": {
            "get": {
                "description": "A miss returns {name, players: []} with status 200.",
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Roster for a schedule entry",
                "parameters": [
                    {"type": "string", "description": "Event name as written in the schedule", "name": "name", "in": "query", "required": true},
                    {"type": "string", "description": "Grade prefix", "name": "grade", "in": "query"},
                    {"type": "string", "description": "Event time", "name": "time", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PlayerList"}},
                    "404": {"description": "Aggregate not written yet", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/athletes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Find athletes by name or class",
                "parameters": [{"type": "string", "description": "Case-insensitive substring", "name": "q", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/backups": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Aggregate backups, newest first",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/backups/{id}/restore": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Make a backup the current aggregate",
                "parameters": [{"type": "string", "description": "Backup id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/merge": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "With dryRun the merged document is returned instead of persisted.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Rebuild the aggregate from the stored fragments",
                "parameters": [{"description": "Merge options", "name": "options", "in": "body", "schema": {"$ref": "#/definitions/handlers.mergeRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Class mapping missing", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Duplicate roster names in strict mode", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/fragments/games": {
            "get": {
                "produces": ["application/json"],
                "tags": ["fragments"],
                "summary": "Names of the stored schedule fragments",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/fragments/games/{file}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["fragments"],
                "summary": "One schedule fragment",
                "parameters": [{"type": "string", "description": "Fragment name, with or without .json", "name": "file", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "array", "items": {"$ref": "#/definitions/models.EventDescriptor"}}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/fragments/players/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["fragments"],
                "summary": "One roster fragment",
                "parameters": [{"type": "string", "description": "Roster file id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PlayerList"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.mergeRequest": {
            "type": "object",
            "properties": {"dryRun": {"type": "boolean"}, "strict": {"type": "boolean"}}
        },
        "models.EventDescriptor": {
            "type": "object",
            "properties": {"grade": {"type": "string"}, "link": {"type": "string"}, "name": {"type": "string"}, "time": {"type": "string"}}
        },
        "models.RosterEntry": {
            "type": "object",
            "properties": {"class": {"type": "string"}, "data": {"type": "string"}, "name": {"type": "string"}, "road": {"type": "string"}}
        },
        "models.PlayerList": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "players": {"type": "array", "items": {"type": "array", "items": {"$ref": "#/definitions/models.RosterEntry"}}}
            }
        },
        "models.SessionPair": {
            "type": "object",
            "properties": {
                "afternoon": {"type": "array", "items": {"$ref": "#/definitions/models.EventDescriptor"}},
                "morning": {"type": "array", "items": {"$ref": "#/definitions/models.EventDescriptor"}}
            }
        },
        "models.Schedule": {
            "type": "object",
            "properties": {"field": {"$ref": "#/definitions/models.SessionPair"}, "track": {"$ref": "#/definitions/models.SessionPair"}}
        },
        "services.LoginInput": {
            "type": "object",
            "properties": {"password": {"type": "string"}, "username": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Sports Meet Data API",
	Description:      "Schedules, rosters and class mapping of the school sports meet.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
