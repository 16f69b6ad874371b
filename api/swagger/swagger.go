package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Internship Office API",
        "description": "Internship postings, applications, recommendation letters, evaluations, and document verification.",
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
        {"name": "Auth", "description": "Authentication and session management"},
        {"name": "Internships", "description": "Internship postings"},
        {"name": "Applications", "description": "Internship applications and review"},
        {"name": "Letters", "description": "Recommendation letter requests"},
        {"name": "Evaluations", "description": "Internship evaluations"},
        {"name": "Notifications", "description": "In-app notifications"},
        {"name": "Verification", "description": "Public document verification"},
        {"name": "Internal", "description": "Scheduler-triggered operations"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token for a new access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/internships": {
            "get": {
                "tags": ["Internships"],
                "summary": "List internship postings",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "location", "in": "query", "type": "string"},
                    {"name": "open", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Internships"],
                "summary": "Create an internship posting",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateInternshipRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/internships/{id}": {
            "get": {
                "tags": ["Internships"],
                "summary": "Get an internship posting",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            },
            "put": {
                "tags": ["Internships"],
                "summary": "Update an internship posting",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateInternshipRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Internships"],
                "summary": "Delete an internship posting",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/applications": {
            "get": {
                "tags": ["Applications"],
                "summary": "List applications (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "internshipId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Applications"],
                "summary": "Apply to an internship",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already applied"}
                }
            }
        },
        "/applications/me": {
            "get": {
                "tags": ["Applications"],
                "summary": "List own applications",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applications/{id}/status": {
            "patch": {
                "tags": ["Applications"],
                "summary": "Update application status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applications/bulk-action": {
            "post": {
                "tags": ["Applications"],
                "summary": "Update the status of several applications",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-item results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/letters/requests": {
            "get": {
                "tags": ["Letters"],
                "summary": "List letter requests (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Letters"],
                "summary": "Request a recommendation letter",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLetterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/letters/requests/{id}/status": {
            "patch": {
                "tags": ["Letters"],
                "summary": "Review a letter request",
                "description": "Approval generates the PDF document once and emails a signed download link.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateLetterStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/letters/requests/{id}/download": {
            "get": {
                "tags": ["Letters"],
                "summary": "Download an approved letter",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF stream"},
                    "404": {"description": "Document not available"}
                }
            }
        },
        "/letters/download": {
            "get": {
                "tags": ["Letters"],
                "summary": "Download a letter via a signed token",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF stream"},
                    "401": {"description": "Invalid or expired link"}
                }
            }
        },
        "/evaluations": {
            "get": {
                "tags": ["Evaluations"],
                "summary": "List evaluations (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Evaluations"],
                "summary": "Create an evaluation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEvaluationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/evaluations/{id}/view": {
            "post": {
                "tags": ["Evaluations"],
                "summary": "View an evaluation",
                "description": "The first view stamps the viewed timestamp.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or not released"}
                }
            }
        },
        "/evaluations/{id}/release": {
            "post": {
                "tags": ["Evaluations"],
                "summary": "Release an evaluation to its student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/evaluations/{id}/acknowledge": {
            "post": {
                "tags": ["Evaluations"],
                "summary": "Acknowledge evaluation feedback",
                "description": "Idempotent: repeat calls return the first acknowledgment.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List own notifications",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "unread", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark a notification read",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/security/verify-document": {
            "post": {
                "tags": ["Verification"],
                "summary": "Verify a document by reference number and code",
                "description": "Always returns 200. A miss carries a generic failure message.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyDocumentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/internal/reminders/run": {
            "post": {
                "tags": ["Internal"],
                "summary": "Run the reminder sweep",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Sweep counters", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateInternshipRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "companyName": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "deadline": {"type": "string"},
                "isOpen": {"type": "boolean"}
            },
            "required": ["title", "companyName"]
        },
        "UpdateInternshipRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "companyName": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "deadline": {"type": "string"},
                "isOpen": {"type": "boolean"}
            }
        },
        "ApplyRequest": {
            "type": "object",
            "properties": {
                "internshipId": {"type": "string"},
                "coverLetter": {"type": "string"},
                "cvUrl": {"type": "string"}
            },
            "required": ["internshipId"]
        },
        "UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "feedback": {"type": "string"}
            },
            "required": ["status"]
        },
        "BulkActionRequest": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"},
                "feedback": {"type": "string"}
            },
            "required": ["ids", "status"]
        },
        "CreateLetterRequest": {
            "type": "object",
            "properties": {
                "companyName": {"type": "string"},
                "purpose": {"type": "string"},
                "internshipDuration": {"type": "string"},
                "additionalNotes": {"type": "string"}
            },
            "required": ["companyName", "purpose"]
        },
        "UpdateLetterStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "adminNotes": {"type": "string"},
                "sendEmail": {"type": "boolean"}
            },
            "required": ["status"]
        },
        "CreateEvaluationRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "internshipId": {"type": "string"},
                "score": {"type": "number"},
                "feedback": {"type": "string"},
                "requiresAcknowledgment": {"type": "boolean"},
                "deadline": {"type": "string"}
            },
            "required": ["studentId", "internshipId"]
        },
        "VerifyDocumentRequest": {
            "type": "object",
            "properties": {
                "referenceNumber": {"type": "string"},
                "verificationCode": {"type": "string"}
            },
            "required": ["referenceNumber", "verificationCode"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"}
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
