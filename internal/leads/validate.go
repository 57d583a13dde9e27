package leads

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeForm validates a URL-encoded form submission with the same rules
// as Decode. Only the first value of each known field is used.
func DecodeForm(form url.Values) (*LeadRequest, error) {
	obj := make(map[string]string, len(form))
	for _, field := range Fields() {
		if values, ok := form[field]; ok && len(values) > 0 {
			obj[field] = values[0]
		}
	}
	body, err := json.Marshal(obj)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return Decode(body)
}

// Decode parses a JSON body and validates it. It returns *ParseError when
// the body is not JSON and *ValidationError listing every violated field.
// A field holding the wrong JSON type is a validation issue, not a parse
// error.
func Decode(body []byte) (*LeadRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	if raw == nil {
		return nil, &ValidationError{Issues: []Issue{{
			Code:    CodeInvalidType,
			Path:    []string{},
			Message: "Expected object, received null",
		}}}
	}

	var (
		lead   LeadRequest
		issues []Issue
	)
	skip := map[string]bool{}

	for _, field := range requiredFields {
		value, present, issue := stringField(raw, field)
		switch {
		case issue != nil:
			issues = append(issues, *issue)
			skip[field] = true
		case !present:
			issues = append(issues, Issue{Code: CodeInvalidType, Path: []string{field}, Message: "Required"})
			skip[field] = true
		default:
			*lead.required(field) = value
		}
	}
	for _, field := range optionalFields {
		value, present, issue := stringField(raw, field)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		if present {
			v := value
			*lead.optional(field) = &v
		}
	}

	normalize(&lead)
	issues = append(issues, constraintIssues(&lead, skip)...)
	if len(issues) > 0 {
		sortIssues(issues)
		return nil, &ValidationError{Issues: issues}
	}
	return &lead, nil
}

// Validate normalizes an already typed lead and checks its constraints.
// The caller's value is not modified.
func Validate(in LeadRequest) (*LeadRequest, error) {
	lead := in
	for _, field := range optionalFields {
		if p := *in.optional(field); p != nil {
			v := *p
			*lead.optional(field) = &v
		}
	}
	normalize(&lead)
	if issues := constraintIssues(&lead, nil); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return &lead, nil
}

// normalize trims every field and drops empty optional fields.
func normalize(lead *LeadRequest) {
	for _, field := range requiredFields {
		p := lead.required(field)
		*p = strings.TrimSpace(*p)
	}
	for _, field := range optionalFields {
		p := lead.optional(field)
		if *p == nil {
			continue
		}
		trimmed := strings.TrimSpace(**p)
		if trimmed == "" {
			*p = nil
			continue
		}
		*p = &trimmed
	}
}

// stringField reads field from raw. JSON null counts as absent.
func stringField(raw map[string]json.RawMessage, field string) (string, bool, *Issue) {
	msg, ok := raw[field]
	if !ok {
		return "", false, nil
	}
	trimmed := bytes.TrimSpace(msg)
	if bytes.Equal(trimmed, []byte("null")) {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false, &Issue{
			Code:    CodeInvalidType,
			Path:    []string{field},
			Message: "Expected string, received " + jsonKind(trimmed),
		}
	}
	return s, true, nil
}

func jsonKind(b []byte) string {
	if len(b) == 0 {
		return "undefined"
	}
	switch b[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case '"':
		return "string"
	default:
		return "number"
	}
}

// constraintIssues runs the struct tags and converts the failures.
func constraintIssues(lead *LeadRequest, skip map[string]bool) []Issue {
	err := validate.Struct(lead)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Issue{{Code: CodeInvalidType, Path: []string{}, Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if skip[fe.Field()] {
			continue
		}
		issues = append(issues, issueFromFieldError(fe))
	}
	return issues
}

func issueFromFieldError(fe validator.FieldError) Issue {
	path := []string{fe.Field()}
	switch fe.Tag() {
	case "min":
		return Issue{
			Code:    CodeTooSmall,
			Path:    path,
			Message: fmt.Sprintf("String must contain at least %s character(s)", fe.Param()),
		}
	case "email":
		return Issue{Code: CodeInvalidString, Path: path, Message: "Invalid email"}
	default:
		return Issue{Code: CodeInvalidString, Path: path, Message: "Invalid " + fe.Field()}
	}
}

func sortIssues(issues []Issue) {
	order := map[string]int{}
	for i, f := range Fields() {
		order[f] = i
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return order[issues[i].Field()] < order[issues[j].Field()]
	})
}
