package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA ADP Timetable API",
        "description": "Timetable generation and teacher workload analysis",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetables", "description": "Weekly timetable previews, analysis and apply"}
    ],
    "paths": {
        "/timetables/templates/{category}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Daily period template of a category",
                "parameters": [
                    {"name": "category", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/previews": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate a timetable preview",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/previews/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Fetch a stored timetable preview",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Preview missing or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/previews/{id}/export": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Download a timetable preview",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/timetables/analyze": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Analyse a period list",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnalyzeTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/apply": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Apply a preview or period list",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplyTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Teacher or room double booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GeneratedPeriod": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "string", "enum": ["MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"]},
                "startTime": {"type": "string", "example": "07:00"},
                "endTime": {"type": "string", "example": "07:40"},
                "slotType": {"type": "string"},
                "unitId": {"type": "string"},
                "unitName": {"type": "string"},
                "teacherId": {"type": "string"},
                "teacherName": {"type": "string"},
                "room": {"type": "string"},
                "hasWarning": {"type": "boolean"},
                "warningMessage": {"type": "string"}
            }
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "required": ["schoolId", "classId", "termId"],
            "properties": {
                "schoolId": {"type": "string"},
                "classId": {"type": "string"},
                "termId": {"type": "string"},
                "category": {"type": "string"},
                "maxSameUnitPerDay": {"type": "integer", "minimum": 1, "maximum": 10},
                "freePeriodsPerDay": {"type": "integer", "minimum": 0, "maximum": 5},
                "seed": {"type": "integer", "format": "int64"}
            }
        },
        "AnalyzeTimetableRequest": {
            "type": "object",
            "required": ["classId", "termId", "periods"],
            "properties": {
                "classId": {"type": "string"},
                "termId": {"type": "string"},
                "requiresTeacherAssignment": {"type": "boolean"},
                "periods": {"type": "array", "items": {"$ref": "#/definitions/GeneratedPeriod"}}
            }
        },
        "ApplyTimetableRequest": {
            "type": "object",
            "properties": {
                "previewId": {"type": "string"},
                "schoolId": {"type": "string"},
                "classId": {"type": "string"},
                "termId": {"type": "string"},
                "periods": {"type": "array", "items": {"$ref": "#/definitions/GeneratedPeriod"}}
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
