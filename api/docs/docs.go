// Package docs registers the OpenAPI document of the sensor bridge with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/view_data": {
            "get": {
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "List readings",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.SensorReading"}}}
                }
            }
        },
        "/save_data_from_chart": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "Save a chart sample",
                "parameters": [
                    {"description": "Sample", "name": "sample", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ChartSample"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/resources.StatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/resources.StatusResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/resources.StatusResponse"}}
                }
            }
        },
        "/save_data_to_database": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "Save a chart point",
                "parameters": [
                    {"description": "Point", "name": "point", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ChartPoint"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/resources.StatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/resources.StatusResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/resources.StatusResponse"}}
                }
            }
        },
        "/write_data_to_json": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["fallback"],
                "summary": "Append to the fallback store",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/resources.StatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/resources.StatusResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/resources.StatusResponse"}}
                }
            }
        },
        "/close_database_connection": {
            "post": {
                "produces": ["application/json"],
                "tags": ["connections"],
                "summary": "Check the database connection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/resources.StatusResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/resources.StatusResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/metrics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Event counters",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/monitoring.Snapshot"}}}
            }
        }
    },
    "definitions": {
        "models.SensorReading": {
            "type": "object",
            "properties": {
                "time": {"type": "string"},
                "acc_0_rms": {"type": "number"},
                "acc_1_rms": {"type": "number"}
            }
        },
        "models.ChartSample": {
            "type": "object",
            "properties": {
                "time": {"type": "number"},
                "acc_0_rms": {"type": "number"},
                "acc_1_rms": {"type": "number"}
            }
        },
        "models.ChartPoint": {
            "type": "object",
            "properties": {
                "x": {"type": "number"},
                "y1": {"type": "number"},
                "y2": {"type": "number"}
            }
        },
        "monitoring.Snapshot": {
            "type": "object",
            "properties": {
                "started_at": {"type": "string"},
                "counts": {"type": "object", "additionalProperties": {"type": "integer"}},
                "last_seen": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "resources.StatusResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "request_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Sensor Bridge API",
	Description:      "Stores and lists accelerometer RMS readings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
