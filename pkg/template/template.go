// Package template renders templated node configuration against the execution context.
package template

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/dukex/operion-kerio/pkg/models"
)

// ContextData returns the template data exposed for an execution.
func ContextData(executionCtx *models.ExecutionContext) map[string]any {
	nodeResults := make(map[string]any, len(executionCtx.NodeResults))
	for id, result := range executionCtx.NodeResults {
		nodeResults[id] = result.Data
	}

	return map[string]any{
		"node_results": nodeResults,
		"variables":    executionCtx.Variables,
		"vars":         executionCtx.Variables,
		"trigger_data": executionCtx.TriggerData,
		"metadata":     executionCtx.Metadata,
		"env":          getEnvVars(),
		"execution": map[string]any{
			"id":                    executionCtx.ID,
			"published_workflow_id": executionCtx.PublishedWorkflowID,
		},
	}
}

func RenderWithContext(input string, executionCtx *models.ExecutionContext) (any, error) {
	return Render(input, ContextData(executionCtx))
}

// RenderFields walks value and renders every string holding a template
// action. Plain strings are left untouched and rendered scalars stay
// strings; a rendered JSON object or array is decoded.
func RenderFields(value any, executionCtx *models.ExecutionContext) (any, error) {
	return renderValue(value, ContextData(executionCtx))
}

func renderValue(value any, data map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		if !strings.Contains(v, "{{") {
			return v, nil
		}

		out, err := execute(v, data)
		if err != nil {
			return nil, err
		}

		if looksLikeJSON(out) {
			var decoded any
			if err := json.Unmarshal([]byte(out), &decoded); err == nil {
				return decoded, nil
			}
		}

		return out, nil
	case map[string]any:
		rendered := make(map[string]any, len(v))

		for key, item := range v {
			r, err := renderValue(item, data)
			if err != nil {
				return nil, fmt.Errorf("field '%s': %w", key, err)
			}

			rendered[key] = r
		}

		return rendered, nil
	case []any:
		rendered := make([]any, len(v))

		for i, item := range v {
			r, err := renderValue(item, data)
			if err != nil {
				return nil, err
			}

			rendered[i] = r
		}

		return rendered, nil
	default:
		return v, nil
	}
}

func Render(templateStr string, data any) (any, error) {
	result, err := execute(templateStr, data)
	if err != nil {
		return nil, err
	}

	if looksLikeJSON(result) {
		var jsonResult any

		err := json.Unmarshal([]byte(result), &jsonResult)
		if err == nil {
			return jsonResult, nil
		}

		return jsonResult, fmt.Errorf("failed to parse json '%s': %w", templateStr, err)
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		return num, nil
	}

	if b, err := strconv.ParseBool(result); err == nil {
		return b, nil
	}

	return result, nil
}

func execute(templateStr string, data any) (string, error) {
	tmpl, err := template.
		New("field").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"rand": func(max int) int {
				if max <= 0 {
					return 0
				}

				num := make([]byte, 1)

				_, err := rand.Read(num)
				if err != nil {
					return 0
				}

				return int(num[0]) % max
			},
		}).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

func looksLikeJSON(s string) bool {
	return (strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"))
}

func getEnvVars() map[string]any {
	envMap := make(map[string]any)

	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if ok {
			envMap[key] = value
		}
	}

	return envMap
}
