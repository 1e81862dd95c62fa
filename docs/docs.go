package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "SupplyDesk Issue Analyzer",
    "description": "Detects systemic supply-chain issues from support tickets and triages new tickets against them",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {
      "get": {"tags": ["health"], "summary": "Ticket source health", "produces": ["application/json"],
        "responses": {"200": {"description": "OK"}, "503": {"description": "Ticket source unavailable"}}}
    },
    "/api/analysis": {
      "get": {"tags": ["analysis"], "summary": "Analyze tickets in the current window", "produces": ["application/json"],
        "responses": {"200": {"description": "Analysis report"}, "500": {"description": "Analysis failed"}}}
    },
    "/api/analysis/export": {
      "get": {"tags": ["analysis"], "summary": "Analysis report as an xlsx workbook",
        "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
        "responses": {"200": {"description": "Workbook"}, "500": {"description": "Analysis failed"}}}
    },
    "/api/analysis/categorize": {
      "post": {"tags": ["analysis"], "summary": "Categorize free text", "consumes": ["application/json"], "produces": ["application/json"],
        "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object",
          "properties": {"subject": {"type": "string"}, "description": {"type": "string"}}}}],
        "responses": {"200": {"description": "Category and keyword matches"}, "400": {"description": "Invalid request"}}}
    },
    "/api/analysis/triage": {
      "post": {"tags": ["analysis"], "summary": "Relate a new ticket to detected issues", "consumes": ["application/json"], "produces": ["application/json"],
        "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object",
          "required": ["id", "priority"],
          "properties": {"id": {"type": "string"}, "subject": {"type": "string"}, "description": {"type": "string"},
            "priority": {"type": "string", "enum": ["low", "medium", "high", "urgent"]},
            "createdAt": {"type": "string", "format": "date-time"},
            "customer": {"type": "object", "properties": {"email": {"type": "string"}, "tier": {"type": "string"}}}}}}],
        "responses": {"200": {"description": "Triage result"}, "400": {"description": "Invalid request"}, "500": {"description": "Analysis failed"}}}
    },
    "/api/analysis/runs": {
      "post": {"tags": ["runs"], "summary": "Run and record an analysis", "produces": ["application/json"],
        "parameters": [{"in": "header", "name": "X-Admin-Key", "type": "string"}],
        "responses": {"200": {"description": "Run result"}, "401": {"description": "Invalid admin key"}, "501": {"description": "Run log not configured"}}}
    },
    "/api/analysis/runs/latest": {
      "get": {"tags": ["runs"], "summary": "Latest recorded analysis run", "produces": ["application/json"],
        "responses": {"200": {"description": "Run"}, "404": {"description": "No runs found"}, "501": {"description": "Run log not configured"}}}
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
