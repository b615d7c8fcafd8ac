package http

// This file implements the builder used for every handler response. It
// keeps header, HX-Trigger and body handling in one place.

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
)

// ResponseBuilder provides a fluent API for building responses.
type ResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the HX-Trigger header.
func (b *ResponseBuilder) Trigger(name string, data any) *ResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerRefreshed tells the page the snapshot was reloaded.
func (b *ResponseBuilder) TriggerRefreshed(loadedAt string) *ResponseBuilder {
	return b.Trigger("ledger:refreshed", map[string]string{"loaded_at": loadedAt})
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the response body and its content type.
func (b *ResponseBuilder) Body(contentType string, content []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.body = content
	return b
}

// Text sets a plain text body.
func (b *ResponseBuilder) Text(content string) *ResponseBuilder {
	return b.Body("text/plain; charset=utf-8", []byte(content))
}

// HTML sets an HTML body.
func (b *ResponseBuilder) HTML(content string) *ResponseBuilder {
	return b.Body("text/html; charset=utf-8", []byte(content))
}

// JSON marshals v as the body. A marshal failure becomes a 500.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("JSON encoding failed", "error", err)
		return b.Status(http.StatusInternalServerError).Text("encoding error")
	}
	return b.Body("application/json", data)
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a plain text error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).Text(message)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// UnavailableError creates a 503 Service Unavailable error response.
func UnavailableError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// Notice renders a small HTML status line for htmx swaps. The message is escaped.
func Notice(class, message string) *ResponseBuilder {
	return NewResponse().HTML(`<span class="notice ` + template.HTMLEscapeString(class) + `">` +
		template.HTMLEscapeString(message) + `</span>`)
}
