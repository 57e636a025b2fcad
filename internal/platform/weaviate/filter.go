package weaviate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
)

// whereFilter mirrors Weaviate's where-filter shape. The same structure is
// marshalled as JSON for the batch-delete endpoint and rendered as a GraphQL
// literal for Get/Aggregate queries.
type whereFilter struct {
	Operator     string        `json:"operator"`
	Operands     []whereFilter `json:"operands,omitempty"`
	Path         []string      `json:"path,omitempty"`
	ValueText    *string       `json:"valueText,omitempty"`
	ValueInt     *int64        `json:"valueInt,omitempty"`
	ValueNumber  *float64      `json:"valueNumber,omitempty"`
	ValueBoolean *bool         `json:"valueBoolean,omitempty"`
}

// translateFilters turns a simple equality map into a Weaviate where filter.
// Keys are visited in sorted order so request bodies are deterministic.
func translateFilters(filters map[string]any) (*whereFilter, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]whereFilter, 0, len(keys))
	for _, key := range keys {
		cond, err := equalityCondition(key, filters[key])
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)
	}

	if len(conditions) == 1 {
		return &conditions[0], nil
	}
	return &whereFilter{Operator: "And", Operands: conditions}, nil
}

func equalityCondition(key string, value any) (whereFilter, error) {
	cond := whereFilter{Operator: "Equal", Path: []string{propertyName(key)}}
	switch v := value.(type) {
	case string:
		cond.ValueText = &v
	case fmt.Stringer:
		s := v.String()
		cond.ValueText = &s
	case int:
		n := int64(v)
		cond.ValueInt = &n
	case int32:
		n := int64(v)
		cond.ValueInt = &n
	case int64:
		cond.ValueInt = &v
	case float32:
		f := float64(v)
		cond.ValueNumber = &f
	case float64:
		cond.ValueNumber = &v
	case bool:
		cond.ValueBoolean = &v
	default:
		return whereFilter{}, vectorstore.OpErr(
			backendName,
			"translate_filter",
			vectorstore.OperationErrorUnsupportedFilter,
			fmt.Sprintf("filter %q has unsupported value type %T", key, value),
			nil,
		)
	}
	return cond, nil
}

// renderGraphQL writes the filter as a GraphQL object literal, with operator
// enums unquoted and strings escaped.
func (w *whereFilter) renderGraphQL() string {
	if w == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("{operator: ")
	b.WriteString(w.Operator)
	if len(w.Operands) > 0 {
		b.WriteString(", operands: [")
		for i := range w.Operands {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(w.Operands[i].renderGraphQL())
		}
		b.WriteString("]")
	}
	if len(w.Path) > 0 {
		b.WriteString(", path: [")
		for i, p := range w.Path {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(p))
		}
		b.WriteString("]")
	}
	switch {
	case w.ValueText != nil:
		b.WriteString(", valueText: ")
		b.WriteString(strconv.Quote(*w.ValueText))
	case w.ValueInt != nil:
		b.WriteString(", valueInt: ")
		b.WriteString(strconv.FormatInt(*w.ValueInt, 10))
	case w.ValueNumber != nil:
		b.WriteString(", valueNumber: ")
		b.WriteString(strconv.FormatFloat(*w.ValueNumber, 'f', -1, 64))
	case w.ValueBoolean != nil:
		b.WriteString(", valueBoolean: ")
		b.WriteString(strconv.FormatBool(*w.ValueBoolean))
	}
	b.WriteString("}")
	return b.String()
}

// propertyName maps a snake_case metadata key onto the camelCase property
// Weaviate's GraphQL schema requires (notebook_id -> notebookId).
func propertyName(key string) string {
	parts := strings.Split(strings.TrimSpace(key), "_")
	if len(parts) == 0 {
		return key
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(strings.ToLower(p[1:]))
	}
	return b.String()
}
