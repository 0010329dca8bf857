package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "iSmartSchedule API",
        "description": "Personal timetable planner: places events, sleep, work and flexible tasks into 30 minute slots over a date range.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Planner", "description": "Schedule generation"},
        {"name": "Timetable", "description": "Stored timetables and exports"},
        {"name": "Activities", "description": "Stored activity definitions"}
    ],
    "paths": {
        "/plans/generate": {
            "post": {
                "tags": ["Planner"],
                "summary": "Generate a timetable for a date range",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GeneratePlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Generated, persistence queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Range written concurrently", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/dates": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List dates with a stored timetable",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/{date}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get one stored day grouped into blocks",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Nothing stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable": {
            "delete": {
                "tags": ["Timetable"],
                "summary": "Delete stored entries within a date range",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "start", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Download a stored range as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "start", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/timetable/exports": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Store an export and return a signed download link",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "start", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Download a stored export via signed token",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities": {
            "get": {
                "tags": ["Activities"],
                "summary": "List stored activities",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string", "enum": ["FixedActivity", "Event", "Task"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Activities"],
                "summary": "Store an activity definition",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateActivityRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "TaskInput": {
            "type": "object",
            "required": ["name", "durationHours"],
            "properties": {
                "name": {"type": "string"},
                "durationHours": {"type": "number"},
                "days": {"type": "array", "items": {"type": "string"}},
                "preferredTime": {"type": "string", "enum": ["any", "morning", "evening"]}
            }
        },
        "EventInput": {
            "type": "object",
            "required": ["name", "date", "start", "durationHours"],
            "properties": {
                "name": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "start": {"type": "string", "example": "14:30"},
                "durationHours": {"type": "number"}
            }
        },
        "GeneratePlanRequest": {
            "type": "object",
            "required": ["startDate", "endDate"],
            "properties": {
                "startDate": {"type": "string", "format": "date"},
                "endDate": {"type": "string", "format": "date"},
                "workdays": {"type": "array", "items": {"type": "string"}},
                "workStart": {"type": "string", "example": "09:00"},
                "workHours": {"type": "number"},
                "sleepHours": {"type": "number"},
                "workName": {"type": "string"},
                "tasks": {"type": "array", "items": {"$ref": "#/definitions/TaskInput"}},
                "events": {"type": "array", "items": {"$ref": "#/definitions/EventInput"}},
                "persist": {"type": "boolean"}
            }
        },
        "CreateActivityRequest": {
            "type": "object",
            "required": ["name", "type", "durationHours"],
            "properties": {
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["FixedActivity", "Event", "Task"]},
                "durationHours": {"type": "number"},
                "eventDate": {"type": "string", "format": "date"},
                "start": {"type": "string"},
                "targetDay": {"type": "string"},
                "preferredTime": {"type": "string", "enum": ["any", "morning", "evening"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
