package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zero-day-ai/fraudgraph/internal/config"
	"github.com/zero-day-ai/fraudgraph/internal/graph"
)

const maxBodyBytes = 1 << 20

// IDList accepts node ids written as JSON strings or integers.
type IDList []string

func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ids must be an array")
	}
	out := make(IDList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err != nil {
			return fmt.Errorf("ids must be strings or integers")
		}
		out = append(out, n.String())
	}
	*l = out
	return nil
}

type propertiesBody struct {
	Properties       map[string]any
	AdditionalLabels []string
}

type removePropertiesRequest struct {
	Properties []string `json:"properties" validate:"required,min=1,dive,required"`
}

type batchUpdateRequest struct {
	IDs        IDList         `json:"ids" validate:"required,min=1,dive,required"`
	Properties map[string]any `json:"properties" validate:"required,min=1"`
}

type batchDeleteRequest struct {
	IDs IDList `json:"ids" validate:"required,min=1,dive,required"`
}

type queryRequest struct {
	Query  string         `json:"query" validate:"required"`
	Params map[string]any `json:"params"`
}

// decodeBody reads a JSON body into out. Numbers are kept exact: integral
// values become int64 so they are stored as Neo4j integers.
func decodeBody(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return graph.NewValidationError("failed to read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return graph.NewValidationError("request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return graph.NewValidationError(fmt.Sprintf("invalid JSON payload: %v", err))
	}

	switch v := out.(type) {
	case *map[string]any:
		*v = normalizeMap(*v)
	case *batchUpdateRequest:
		v.Properties = normalizeMap(v.Properties)
	case *queryRequest:
		v.Params = normalizeMap(v.Params)
	}
	return nil
}

// decodeProperties accepts either {"properties": {...}, "additionalLabels": [...]}
// or a bare property map.
func decodeProperties(r *http.Request) (propertiesBody, error) {
	var raw map[string]any
	if err := decodeBody(r, &raw); err != nil {
		return propertiesBody{}, err
	}

	body := propertiesBody{Properties: raw}
	if props, ok := raw["properties"].(map[string]any); ok {
		body.Properties = props
		if labels, ok := raw["additionalLabels"].([]any); ok {
			for _, l := range labels {
				s, ok := l.(string)
				if !ok {
					return propertiesBody{}, graph.NewValidationError("additionalLabels must be strings")
				}
				body.AdditionalLabels = append(body.AdditionalLabels, s)
			}
		}
	}
	if len(body.Properties) == 0 {
		return propertiesBody{}, graph.NewValidationError("properties are required")
	}
	return body, nil
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeJSON(v)
	}
	return out
}

func normalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		return normalizeMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeJSON(item)
		}
		return out
	default:
		return v
	}
}

// queryParams flattens the URL query into a map keyed in snake_case, so
// ?timeWindowMinutes=30 and ?time_window_minutes=30 decode alike.
func queryParams(r *http.Request) map[string]any {
	values := r.URL.Query()
	out := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		out[snakeCase(key)] = vals[0]
	}
	return out
}

// decodeQuery decodes the URL query into out and validates it.
func (s *Server) decodeQuery(r *http.Request, out any) error {
	if err := configDecode(queryParams(r), out); err != nil {
		return graph.NewValidationError(fmt.Sprintf("invalid query parameters: %v", err))
	}
	return s.validateStruct(out)
}

// configDecode shares the configuration decoder, so query values convert
// exactly like config values.
var configDecode = config.DecodeMap

func (s *Server) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return graph.NewValidationError(err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return graph.NewValidationError(strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := snakeCase(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", field, snakeCase(fe.Param()))
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] != '_' && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, graph.NewValidationError(fmt.Sprintf("limit must be an integer (got %q)", raw))
	}
	return limit, nil
}
