package graph

import "github.com/spec-kit/staff-directory/internal/domain"

// Omitted and null arguments are absent from the args map.

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func optionalString(args map[string]interface{}, name string) *string {
	s, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func intArg(args map[string]interface{}, name string) int {
	n, _ := args[name].(int)
	return n
}

func optionalInt(args map[string]interface{}, name string) *int {
	n, ok := args[name].(int)
	if !ok {
		return nil
	}
	return &n
}

func optionalFloat(args map[string]interface{}, name string) *float64 {
	switch v := args[name].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func stringListArg(args map[string]interface{}, name string) []string {
	raw, ok := args[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func roleArg(args map[string]interface{}, name string) (domain.Role, bool) {
	switch v := args[name].(type) {
	case domain.Role:
		return v, true
	case string:
		return domain.Role(v), true
	}
	return "", false
}

func employeeFields(args map[string]interface{}) domain.EmployeeFields {
	return domain.EmployeeFields{
		Name:       optionalString(args, "name"),
		Age:        optionalInt(args, "age"),
		Class:      optionalString(args, "class"),
		Subjects:   stringListArg(args, "subjects"),
		Attendance: optionalFloat(args, "attendance"),
	}
}
