package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasktrack/internal/domain"
)

// optionalText is a JSON field that may be absent, null or a string.
// Any other JSON type is recorded as invalid rather than failing the decode.
type optionalText struct {
	Value *string
	Set   bool
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *optionalText) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Valid = true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		o.Valid = false
		return nil
	}
	o.Value = &s
	o.Valid = true
	return nil
}

// looseBool accepts true, false, 1, 0, "1", "0", "true" and "false".
type looseBool struct {
	Value bool
	Set   bool
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *looseBool) UnmarshalJSON(data []byte) error {
	b.Set = true
	switch string(bytes.TrimSpace(data)) {
	case "true", "1", `"1"`, `"true"`:
		b.Value, b.Valid = true, true
	case "false", "0", `"0"`, `"false"`:
		b.Value, b.Valid = false, true
	default:
		b.Value, b.Valid = false, false
	}
	return nil
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string       `json:"title"       validate:"required,max=255"`
	Description optionalText `json:"description" validate:"-"`
	Category    string       `json:"category"    validate:"required,oneof=work personal urgent"`
	Deadline    string       `json:"deadline"    validate:"required,deadline,after_now"`
}

// UpdateTaskRequest is the body of PATCH /tasks/{id}. Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string      `json:"title"       validate:"omitnil,required,max=255"`
	Description optionalText `json:"description" validate:"-"`
	Category    *string      `json:"category"    validate:"omitnil,required,oneof=work personal urgent"`
	Deadline    *string      `json:"deadline"    validate:"omitnil,required,deadline,after_now"`
	Completed   looseBool    `json:"completed"   validate:"-"`

	// nulls lists the required fields that were sent as JSON null.
	nulls []string
}

// nullableRequired are the update fields that may be omitted but not nulled.
var nullableRequired = []string{"title", "category", "deadline"}

// UnmarshalJSON implements json.Unmarshaler, recording fields sent as null.
func (r *UpdateTaskRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateTaskRequest
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	r.nulls = nil
	for _, field := range nullableRequired {
		if v, ok := raw[field]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			r.nulls = append(r.nulls, field)
		}
	}
	return nil
}

// fieldOrder is the order in which failing fields are reported.
var fieldOrder = []string{"title", "description", "category", "deadline", "completed"}

// validationMessages maps "field.tag" to the message shown to clients.
var validationMessages = map[string]string{
	"title.required":     domain.MsgTitleRequired,
	"title.max":          domain.MsgTitleTooLong,
	"category.required":  domain.MsgCategoryRequired,
	"category.oneof":     domain.MsgCategoryInvalid,
	"deadline.required":  domain.MsgDeadlineRequired,
	"deadline.deadline":  domain.MsgDeadlineInvalid,
	"deadline.after_now": domain.MsgDeadlineNotFuture,
}

// requestValidator validates task request bodies. Deadlines without an
// offset are read in loc and compared against clock.
type requestValidator struct {
	validate *validator.Validate
	clock    func() time.Time
	loc      *time.Location
}

func newRequestValidator(clock func() time.Time, loc *time.Location) *requestValidator {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	rv := &requestValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		clock:    clock,
		loc:      loc,
	}

	rv.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(rv.validate, "deadline", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDeadline(fl.Field().String(), rv.loc)
		return err == nil
	})
	mustRegister(rv.validate, "after_now", func(fl validator.FieldLevel) bool {
		deadline, err := domain.ParseDeadline(fl.Field().String(), rv.loc)
		return err == nil && deadline.After(rv.clock())
	})
	return rv
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("invalid validation tag " + tag + ": " + err.Error())
	}
}

// fieldErrors collects messages per request field.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

// first returns the first message in field order.
func (fe fieldErrors) first() string {
	for _, field := range fieldOrder {
		if msgs := fe[field]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	for _, msgs := range fe {
		if len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

// check runs the struct rules and returns the failures, or nil.
func (rv *requestValidator) check(req any) fieldErrors {
	errs := fieldErrors{}

	if err := rv.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs.add("request", MsgInvalidRequest)
			return errs
		}
		for _, fe := range verrs {
			msg, ok := validationMessages[fe.Field()+"."+fe.Tag()]
			if !ok {
				msg = "The " + fe.Field() + " field is invalid"
			}
			errs.add(fe.Field(), msg)
		}
	}

	switch r := req.(type) {
	case *CreateTaskRequest:
		if r.Description.Set && !r.Description.Valid {
			errs.add("description", domain.MsgDescriptionNotText)
		}
	case *UpdateTaskRequest:
		for _, field := range r.nulls {
			errs.add(field, validationMessages[field+".required"])
		}
		if r.Description.Set && !r.Description.Valid {
			errs.add("description", domain.MsgDescriptionNotText)
		}
		if r.Completed.Set && !r.Completed.Valid {
			errs.add("completed", domain.MsgCompletedNotBool)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// toInput converts a validated request into domain input.
func (r *CreateTaskRequest) toInput(loc *time.Location) (domain.TaskInput, error) {
	deadline, err := domain.ParseDeadline(r.Deadline, loc)
	if err != nil {
		return domain.TaskInput{}, domain.NewValidationError("deadline", domain.MsgDeadlineInvalid, err)
	}
	return domain.TaskInput{
		Title:       r.Title,
		Description: r.Description.Value,
		Category:    domain.Category(r.Category),
		Deadline:    deadline,
	}, nil
}

// toPatch converts a validated request into a domain patch.
func (r *UpdateTaskRequest) toPatch(loc *time.Location) (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:          r.Title,
		Description:    r.Description.Value,
		DescriptionSet: r.Description.Set,
	}
	if r.Category != nil {
		category := domain.Category(*r.Category)
		patch.Category = &category
	}
	if r.Deadline != nil {
		deadline, err := domain.ParseDeadline(*r.Deadline, loc)
		if err != nil {
			return domain.TaskPatch{}, domain.NewValidationError("deadline", domain.MsgDeadlineInvalid, err)
		}
		patch.Deadline = &deadline
	}
	if r.Completed.Set {
		completed := r.Completed.Value
		patch.Completed = &completed
	}
	return patch, nil
}
