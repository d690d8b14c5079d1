package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-regwizard/pkg/model"
)

// ErrorMapping groups validation messages for presentation: field-level
// messages keyed by field key and form-level messages that belong to no
// single field.
type ErrorMapping struct {
	Fields map[model.FieldKey][]string `json:"fields,omitempty"`
	Form   []string                    `json:"form,omitempty"`
}

// Empty reports whether the mapping carries no messages.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// For returns the messages attached to key.
func (m ErrorMapping) For(key model.FieldKey) []string {
	if len(m.Fields) == 0 {
		return nil
	}
	return m.Fields[key]
}

// Without returns a copy of the mapping with the messages for key removed.
func (m ErrorMapping) Without(key model.FieldKey) ErrorMapping {
	out := ErrorMapping{Form: append([]string(nil), m.Form...)}
	for field, messages := range m.Fields {
		if field == key {
			continue
		}
		if out.Fields == nil {
			out.Fields = make(map[model.FieldKey][]string, len(m.Fields))
		}
		out.Fields[field] = append([]string(nil), messages...)
	}
	if len(out.Form) == 0 {
		out.Form = nil
	}
	return out
}

// Merge combines two mappings, normalising and de-duplicating messages.
func (m ErrorMapping) Merge(other ErrorMapping) ErrorMapping {
	out := ErrorMapping{Form: MergeFormErrors(m.Form, other.Form...)}
	for _, src := range []map[model.FieldKey][]string{m.Fields, other.Fields} {
		for field, messages := range src {
			if out.Fields == nil {
				out.Fields = make(map[model.FieldKey][]string)
			}
			out.Fields[field] = append(out.Fields[field], messages...)
		}
	}
	for field, messages := range out.Fields {
		out.Fields[field] = normalizeMessages(messages)
		if out.Fields[field] == nil {
			delete(out.Fields, field)
		}
	}
	if len(out.Fields) == 0 {
		out.Fields = nil
	}
	return out
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapFieldErrors groups field errors by key. Errors naming something other
// than a wizard field (for example the role choice) become form-level
// messages prefixed with their subject.
func MapFieldErrors(errs []model.FieldError) ErrorMapping {
	mapping := ErrorMapping{}
	known := knownFields()
	for _, fe := range errs {
		message := strings.TrimSpace(fe.Message)
		if message == "" {
			continue
		}
		if _, ok := known[fe.Field]; !ok {
			if subject := strings.TrimSpace(string(fe.Field)); subject != "" && !isFormLevelKey(subject) {
				message = subject + ": " + message
			}
			mapping.Form = append(mapping.Form, message)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[model.FieldKey][]string)
		}
		mapping.Fields[fe.Field] = append(mapping.Fields[fe.Field], message)
	}
	for field, messages := range mapping.Fields {
		mapping.Fields[field] = normalizeMessages(messages)
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MapErrorPayload normalises a remote error payload (JSON pointer, dotted or
// bracketed paths, optionally wrapped in body/payload/basicInfo style
// segments) onto wizard field keys. Unknown paths are treated as form-level
// errors so messages are not lost.
func MapErrorPayload(payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{}
	if len(payload) == 0 {
		return mapping
	}
	known := knownFields()

	for rawPath, messages := range payload {
		normalizedMessages := normalizeMessages(messages)
		if len(normalizedMessages) == 0 {
			continue
		}

		mapped, formLevel := mapErrorPath(rawPath, known)
		if formLevel {
			mapping.Form = append(mapping.Form, normalizedMessages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[model.FieldKey][]string)
		}
		mapping.Fields[mapped] = normalizeMessages(append(mapping.Fields[mapped], normalizedMessages...))
	}

	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func knownFields() map[model.FieldKey]struct{} {
	out := make(map[model.FieldKey]struct{}, len(model.FieldKeys))
	for _, key := range model.FieldKeys {
		out[key] = struct{}{}
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, known map[model.FieldKey]struct{}) (model.FieldKey, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := stripNumericSegments(dropWrapperSegments(parsePathSegments(trimmed)))
	if len(segments) == 0 {
		return "", true
	}
	// The first remaining segment names the field; deeper segments such as
	// attachments/0/name point inside it.
	key := model.FieldKey(segments[0])
	if _, ok := known[key]; ok {
		return key, false
	}
	return "", true
}

func parsePathSegments(path string) []string {
	if path == "" {
		return nil
	}

	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":        {},
	"request":     {},
	"payload":     {},
	"data":        {},
	"attributes":  {},
	"basicinfo":   {},
	"studentinfo": {},
	"teacherinfo": {},
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	if len(segments) == 0 {
		return segments
	}

	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
