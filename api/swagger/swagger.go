package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Citas API",
        "description": "Availability and booking engine for university counselling appointments",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Appointments",
            "description": "Booking, rescheduling and cancellation"
        },
        {
            "name": "Availability",
            "description": "Practitioner availability windows"
        },
        {
            "name": "Calendar",
            "description": "Day views and open slots"
        },
        {
            "name": "Health",
            "description": "Probes and metrics"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Readiness probe",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Plain text error; code in X-Error-Code"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/dates/agendar": {
            "post": {
                "tags": [
                    "Appointments"
                ],
                "summary": "Book an appointment",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BookRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Appointment"
                        }
                    },
                    "400": {
                        "description": "Plain text error; code in X-Error-Code"
                    },
                    "403": {
                        "description": "Plain text error; code in X-Error-Code"
                    },
                    "409": {
                        "description": "Plain text error; code in X-Error-Code"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/todas": {
            "get": {
                "tags": [
                    "Appointments"
                ],
                "summary": "List every appointment",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/Appointment"
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/citas": {
            "get": {
                "tags": [
                    "Appointments"
                ],
                "summary": "List a practitioner's appointments",
                "parameters": [
                    {
                        "name": "idPsicologo",
                        "in": "query",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "fecha",
                        "in": "query",
                        "type": "string",
                        "description": "YYYY-MM-DD"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/Appointment"
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/citas/exportar": {
            "get": {
                "tags": [
                    "Appointments"
                ],
                "summary": "Download a daily agenda",
                "parameters": [
                    {
                        "name": "idPsicologo",
                        "in": "query",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "fecha",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "formato",
                        "in": "query",
                        "type": "string",
                        "description": "csv or pdf"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/citas/{id}": {
            "get": {
                "tags": [
                    "Appointments"
                ],
                "summary": "Get appointment",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Appointment"
                        }
                    },
                    "404": {
                        "description": "Plain text error; code in X-Error-Code"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/cliente/{id}": {
            "get": {
                "tags": [
                    "Appointments"
                ],
                "summary": "List a client's appointments",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/Appointment"
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/modificar/{id}": {
            "put": {
                "tags": [
                    "Appointments"
                ],
                "summary": "Reschedule an appointment",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SpanInput"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Appointment"
                        }
                    },
                    "404": {
                        "description": "Plain text error; code in X-Error-Code"
                    },
                    "409": {
                        "description": "Plain text error; code in X-Error-Code"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/cancelar/{id}": {
            "delete": {
                "tags": [
                    "Appointments"
                ],
                "summary": "Cancel an appointment",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Cancelled"
                    },
                    "404": {
                        "description": "Plain text error; code in X-Error-Code"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/disponibilidad": {
            "post": {
                "tags": [
                    "Availability"
                ],
                "summary": "Open an availability window",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/WindowRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/AvailabilityWindow"
                        }
                    },
                    "400": {
                        "description": "Plain text error; code in X-Error-Code"
                    },
                    "403": {
                        "description": "Plain text error; code in X-Error-Code"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/disponibilidades/masivas": {
            "post": {
                "tags": [
                    "Availability"
                ],
                "summary": "Generate windows for a date range",
                "parameters": [
                    {
                        "name": "idPsicologo",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "fechaInicio",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "fechaFin",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "horaInicio",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "horaFin",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "dias",
                        "in": "query",
                        "type": "string",
                        "description": "e.g. lunes,miercoles; defaults to every day"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Created"
                    },
                    "207": {
                        "description": "Partially created",
                        "schema": {
                            "$ref": "#/definitions/BulkAvailabilityResult"
                        }
                    },
                    "400": {
                        "description": "Plain text error; code in X-Error-Code"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/disponibilidades": {
            "get": {
                "tags": [
                    "Availability"
                ],
                "summary": "List availability windows",
                "parameters": [
                    {
                        "name": "idPsicologo",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "fecha",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "mes",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "anio",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/AvailabilityWindow"
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/disponibilidades/slots": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Bookable slots for one day",
                "parameters": [
                    {
                        "name": "idPsicologo",
                        "in": "query",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "fecha",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "duracion",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "paso",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/Slot"
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/disponibilidades/{id}": {
            "put": {
                "tags": [
                    "Availability"
                ],
                "summary": "Replace an availability window",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/WindowRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/AvailabilityWindow"
                        }
                    },
                    "404": {
                        "description": "Plain text error; code in X-Error-Code"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Availability"
                ],
                "summary": "Delete an availability window",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "404": {
                        "description": "Plain text error; code in X-Error-Code"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/calendario": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Windows, appointments and free slots for one day",
                "parameters": [
                    {
                        "name": "idPsicologo",
                        "in": "query",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "fecha",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Calendar"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/disponibilidades/filtrar": {
            "get": {
                "tags": [
                    "Availability"
                ],
                "summary": "List availability windows",
                "parameters": [
                    {
                        "name": "idPsicologo",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "fecha",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "mes",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "anio",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/AvailabilityWindow"
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dates/disponibilidades/todas": {
            "get": {
                "tags": [
                    "Availability"
                ],
                "summary": "List availability windows",
                "parameters": [
                    {
                        "name": "idPsicologo",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "fecha",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "mes",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "anio",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/AvailabilityWindow"
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "SpanInput": {
            "type": "object",
            "properties": {
                "fecha": {
                    "type": "string",
                    "example": "2025-01-06"
                },
                "horaInicio": {
                    "type": "string",
                    "example": "09:00"
                },
                "horaFin": {
                    "type": "string",
                    "example": "10:00"
                }
            }
        },
        "BookRequest": {
            "type": "object",
            "properties": {
                "idPsicologo": {
                    "type": "integer"
                },
                "idCliente": {
                    "type": "integer"
                },
                "fecha": {
                    "type": "string",
                    "example": "2025-01-06"
                },
                "horaInicio": {
                    "type": "string",
                    "example": "09:00"
                },
                "horaFin": {
                    "type": "string",
                    "example": "10:00"
                }
            }
        },
        "WindowRequest": {
            "type": "object",
            "properties": {
                "idPsicologo": {
                    "type": "integer"
                },
                "fecha": {
                    "type": "string",
                    "example": "2025-01-06"
                },
                "horaInicio": {
                    "type": "string",
                    "example": "09:00"
                },
                "horaFin": {
                    "type": "string",
                    "example": "10:00"
                }
            }
        },
        "Appointment": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "idPsicologo": {
                    "type": "integer"
                },
                "idCliente": {
                    "type": "integer"
                },
                "fecha": {
                    "type": "string",
                    "example": "2025-01-06"
                },
                "horaInicio": {
                    "type": "string",
                    "example": "09:00"
                },
                "horaFin": {
                    "type": "string",
                    "example": "10:00"
                },
                "estado": {
                    "type": "string",
                    "example": "Confirmada"
                }
            }
        },
        "AvailabilityWindow": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "idPsicologo": {
                    "type": "integer"
                },
                "fecha": {
                    "type": "string",
                    "example": "2025-01-06"
                },
                "horaInicio": {
                    "type": "string",
                    "example": "09:00"
                },
                "horaFin": {
                    "type": "string",
                    "example": "10:00"
                }
            }
        },
        "Slot": {
            "type": "object",
            "properties": {
                "fecha": {
                    "type": "string",
                    "example": "2025-01-06"
                },
                "horaInicio": {
                    "type": "string",
                    "example": "09:00"
                },
                "horaFin": {
                    "type": "string",
                    "example": "10:00"
                }
            }
        },
        "BulkFailure": {
            "type": "object",
            "properties": {
                "fecha": {
                    "type": "string"
                },
                "error": {
                    "type": "string"
                }
            }
        },
        "BulkAvailabilityResult": {
            "type": "object",
            "properties": {
                "created": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/AvailabilityWindow"
                    }
                },
                "failed": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/BulkFailure"
                    }
                }
            }
        },
        "Calendar": {
            "type": "object",
            "properties": {
                "idPsicologo": {
                    "type": "integer"
                },
                "fecha": {
                    "type": "string"
                },
                "disponibilidades": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/AvailabilityWindow"
                    }
                },
                "citas": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Appointment"
                    }
                },
                "slots": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Slot"
                    }
                }
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
