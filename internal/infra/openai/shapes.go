package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"voice-shapes/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Pointers tell an absent or null field apart from an explicit zero. The
// upper bound keeps derived geometry (diameters, padded plot ranges) finite.
type rectangleFields struct {
	Width  *float64 `json:"width" validate:"required,gt=0,lte=1e150"`
	Height *float64 `json:"height" validate:"required,gt=0,lte=1e150"`
}

type circleFields struct {
	Radius *float64 `json:"radius" validate:"required,gt=0,lte=1e150"`
}

// ParseShapes decodes a {"shapes": [...]} reply. Keys are matched exactly
// and missing values are never filled in: any deviation from the schema is
// an *domain.ExtractionError.
func ParseShapes(raw string) (domain.ShapeList, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, &domain.ExtractionError{Raw: raw, Reason: "invalid JSON object", Err: err}
	}

	items, ok := top["shapes"]
	if !ok {
		return nil, &domain.ExtractionError{Raw: raw, Reason: `missing "shapes" key`}
	}
	var list []json.RawMessage
	if err := json.Unmarshal(items, &list); err != nil || list == nil {
		return nil, &domain.ExtractionError{Raw: raw, Reason: `"shapes" is not an array`, Err: err}
	}

	shapes := make(domain.ShapeList, 0, len(list))
	for i, item := range list {
		shape, err := parseShape(item)
		if err != nil {
			return nil, &domain.ExtractionError{Raw: raw, Reason: fmt.Sprintf("shape %d", i), Err: err}
		}
		shapes = append(shapes, shape)
	}

	return shapes, nil
}

func parseShape(item json.RawMessage) (domain.Shape, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return domain.Shape{}, errors.New("not a JSON object")
	}

	rawType, ok := fields["type"]
	if !ok {
		return domain.Shape{}, errors.New(`missing "type"`)
	}
	var shapeType domain.ShapeType
	if err := json.Unmarshal(rawType, &shapeType); err != nil {
		return domain.Shape{}, fmt.Errorf("decoding type: %w", err)
	}

	var err error
	switch shapeType {
	case domain.ShapeRectangle:
		var f rectangleFields
		if f.Width, err = number(fields, "width"); err != nil {
			return domain.Shape{}, err
		}
		if f.Height, err = number(fields, "height"); err != nil {
			return domain.Shape{}, err
		}
		if err := validateFields(&f); err != nil {
			return domain.Shape{}, err
		}
		return domain.Rectangle(*f.Width, *f.Height), nil

	case domain.ShapeCircle:
		var f circleFields
		if f.Radius, err = number(fields, "radius"); err != nil {
			return domain.Shape{}, err
		}
		if err := validateFields(&f); err != nil {
			return domain.Shape{}, err
		}
		return domain.Circle(*f.Radius), nil

	default:
		return domain.Shape{}, fmt.Errorf("unknown shape type %q", shapeType)
	}
}

// number returns nil for an absent or null key so validation reports it as
// required.
func number(fields map[string]json.RawMessage, key string) (*float64, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%s is not a number", key)
	}
	return v, nil
}

func validateFields(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating fields: %w", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fe.Field()+" "+describe(fe))
	}
	return errors.New(strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
