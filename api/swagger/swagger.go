package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CSR Compliance API",
        "description": "Requirements, documents and versioned evidence files for CSR compliance tracking.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Requirements", "description": "Compliance criteria"},
        {"name": "Documents", "description": "Evidence documents grouped by requirement"},
        {"name": "Versions", "description": "Document versions and attached files"},
        {"name": "Import", "description": "CSV bulk import"},
        {"name": "Reports", "description": "Compliance report exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/requirements": {
            "get": {
                "tags": ["Requirements"],
                "summary": "List requirements with nested documents and versions",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RequirementsResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requirements/{id}": {
            "patch": {
                "tags": ["Requirements"],
                "summary": "Update requirement status",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusPatch"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/Message"}},
                    "400": {"description": "Invalid status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents with all versions",
                "parameters": [
                    {"name": "ReferenceId", "in": "query", "type": "integer", "description": "Requirement filter"},
                    {"name": "requirement_id", "in": "query", "type": "integer", "description": "Requirement filter (alias)"},
                    {"name": "includeArchived", "in": "query", "type": "boolean", "description": "Include archived documents"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DocumentsResponse"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{id}": {
            "patch": {
                "tags": ["Documents"],
                "summary": "Partially update a document",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DocumentPatch"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/Message"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "RequirementID cannot change", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{id}/versions": {
            "post": {
                "tags": ["Versions"],
                "summary": "Create the next version of a document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CreateVersionResponse"}},
                    "404": {"description": "Document not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/versions/{id}": {
            "patch": {
                "tags": ["Versions"],
                "summary": "Partially update a version",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VersionPatch"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/Message"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/versions/{id}/upload-file": {
            "patch": {
                "tags": ["Versions"],
                "summary": "Attach or replace the file of a version",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Uploaded", "schema": {"$ref": "#/definitions/Message"}},
                    "400": {"description": "File missing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Version not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "415": {"description": "File type not allowed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/versions/{id}/download-url": {
            "get": {
                "tags": ["Versions"],
                "summary": "Issue a signed download link",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No file attached", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/versions/{id}/file": {
            "get": {
                "tags": ["Versions"],
                "summary": "Download a version's file",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid, expired or superseded token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/upload-csv": {
            "post": {
                "tags": ["Import"],
                "summary": "Import requirements and documents from CSV",
                "description": "Columns: Name, Description, Documents (comma separated), Status. The first row is a header.",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Imported", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed CSV", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/compliance.csv": {
            "get": {
                "tags": ["Reports"],
                "summary": "Compliance report as CSV",
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV file"}}
            }
        },
        "/reports/compliance.pdf": {
            "get": {
                "tags": ["Reports"],
                "summary": "Compliance report as PDF",
                "produces": ["application/pdf"],
                "responses": {"200": {"description": "PDF file"}}
            }
        }
    },
    "definitions": {
        "Status": {
            "type": "string",
            "enum": ["compliant", "non-compliant", "pending"]
        },
        "DocumentVersion": {
            "type": "object",
            "properties": {
                "ID": {"type": "integer"},
                "DocumentID": {"type": "integer"},
                "Version": {"type": "string"},
                "Path": {"type": "string"},
                "Status": {"$ref": "#/definitions/Status"},
                "Archived": {"type": "boolean"},
                "CreatedAt": {"type": "string", "format": "date-time"},
                "UpdatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "Document": {
            "type": "object",
            "properties": {
                "ID": {"type": "integer"},
                "Name": {"type": "string"},
                "Description": {"type": "string"},
                "RequirementID": {"type": "integer"},
                "Status": {"$ref": "#/definitions/Status"},
                "Archived": {"type": "boolean"},
                "Versions": {"type": "array", "items": {"$ref": "#/definitions/DocumentVersion"}},
                "CreatedAt": {"type": "string", "format": "date-time"},
                "UpdatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "Requirement": {
            "type": "object",
            "properties": {
                "ID": {"type": "integer"},
                "Name": {"type": "string"},
                "Description": {"type": "string"},
                "Status": {"$ref": "#/definitions/Status"},
                "Documents": {"type": "array", "items": {"$ref": "#/definitions/Document"}},
                "CreatedAt": {"type": "string", "format": "date-time"},
                "UpdatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "RequirementsResponse": {
            "type": "object",
            "properties": {
                "requirements": {"type": "array", "items": {"$ref": "#/definitions/Requirement"}}
            }
        },
        "DocumentsResponse": {
            "type": "object",
            "properties": {
                "documents": {"type": "array", "items": {"$ref": "#/definitions/Document"}}
            }
        },
        "CreateVersionResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "version": {"$ref": "#/definitions/DocumentVersion"}
            }
        },
        "StatusPatch": {
            "type": "object",
            "required": ["Status"],
            "properties": {
                "Status": {"type": "string", "enum": ["compliant", "non-compliant"]}
            }
        },
        "DocumentPatch": {
            "type": "object",
            "properties": {
                "Name": {"type": "string"},
                "Description": {"type": "string"},
                "Status": {"type": "string", "enum": ["compliant", "non-compliant"]},
                "Archived": {"type": "boolean"}
            }
        },
        "VersionPatch": {
            "type": "object",
            "properties": {
                "Status": {"type": "string", "enum": ["compliant", "non-compliant"]},
                "Archived": {"type": "boolean"}
            }
        },
        "Message": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
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
