package traverse

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/smdgraph/pkg/errors"
)

// Parameter bounds. Requests outside these ranges are rejected before any
// traversal work starts.
const (
	MinPaths, MaxPaths   = 1, 20
	MinDepth, MaxDepth   = 1, 10
	MinLevel, MaxLevel   = 1, 3
	MinFanout, MaxFanout = 1, 10
)

// Defaults used when a caller leaves a parameter at zero via [PathParams.WithDefaults]
// or [ExpandParams.WithDefaults].
const (
	DefaultPaths  = 3
	DefaultDepth  = 6
	DefaultLevel  = 1
	DefaultFanout = 7
)

// candidateFactor is how many valid candidates path search collects per
// requested path before ranking.
const candidateFactor = 3

// PathParams bounds a path search.
type PathParams struct {
	MaxPaths int `json:"max_paths" validate:"min=1,max=20"`
	MaxDepth int `json:"max_depth" validate:"min=1,max=10"`
}

// WithDefaults fills zero fields with the package defaults.
func (p PathParams) WithDefaults() PathParams {
	if p.MaxPaths == 0 {
		p.MaxPaths = DefaultPaths
	}
	if p.MaxDepth == 0 {
		p.MaxDepth = DefaultDepth
	}
	return p
}

// Validate returns an INVALID_PARAMETER error naming the first field out of
// range.
func (p PathParams) Validate() error {
	return validateStruct(p)
}

// ExpandParams bounds a neighborhood expansion.
type ExpandParams struct {
	Level     int  `json:"level" validate:"min=1,max=3"`
	MaxFanout int  `json:"max_fanout" validate:"min=1,max=10"`
	Closure   bool `json:"closure"`
}

// WithDefaults fills zero fields with the package defaults.
func (p ExpandParams) WithDefaults() ExpandParams {
	if p.Level == 0 {
		p.Level = DefaultLevel
	}
	if p.MaxFanout == 0 {
		p.MaxFanout = DefaultFanout
	}
	return p
}

// Validate returns an INVALID_PARAMETER error naming the first field out of
// range.
func (p ExpandParams) Validate() error {
	return validateStruct(p)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInternal, err, "validate parameters")
	}
	fe := verrs[0]
	lo, hi, ok := bounds(fe.Field())
	if !ok {
		return errors.New(errors.ErrCodeInvalidParameter, "%s fails %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return errors.New(errors.ErrCodeInvalidParameter, "%s must be in [%d,%d], got %v", fe.Field(), lo, hi, fe.Value())
}

func bounds(field string) (lo, hi int, ok bool) {
	switch field {
	case "max_paths":
		return MinPaths, MaxPaths, true
	case "max_depth":
		return MinDepth, MaxDepth, true
	case "level":
		return MinLevel, MaxLevel, true
	case "max_fanout":
		return MinFanout, MaxFanout, true
	default:
		return 0, 0, false
	}
}

// jsonName reports fields by their JSON name so errors match API parameters.
func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}
