// Package params implements the textual encoding of node parameter values.
//
// Values cross the engine boundary as strings:
//
//	bool           "true" | "false"
//	float          -?[0-9]+(\.[0-9]*)?
//	int            -?[0-9]+
//	uint           [0-9]+
//	string         any text
//	position       "x,y"
//	position_list  "x1,y1;x2,y2;..."
package params

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/graphnav/pkg/domain"
)

var (
	floatPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]*)?$`)
	intPattern   = regexp.MustCompile(`^-?[0-9]+$`)
	uintPattern  = regexp.MustCompile(`^[0-9]+$`)
)

// intBits is the width of int and uint parameters.
const intBits = 32

// Validate checks that value is valid for kind, including the numeric range.
func Validate(kind domain.ParamKind, value string) error {
	ok := false
	switch kind {
	case domain.ParamBool:
		ok = value == "true" || value == "false"
	case domain.ParamFloat:
		if ok = floatPattern.MatchString(value); ok {
			_, err := strconv.ParseFloat(value, 64)
			ok = err == nil
		}
	case domain.ParamInt:
		if ok = intPattern.MatchString(value); ok {
			_, err := strconv.ParseInt(value, 10, intBits)
			ok = err == nil
		}
	case domain.ParamUint:
		if ok = uintPattern.MatchString(value); ok {
			_, err := strconv.ParseUint(value, 10, intBits)
			ok = err == nil
		}
	case domain.ParamString:
		ok = true
	case domain.ParamPosition:
		_, err := ParsePosition(value)
		ok = err == nil
	case domain.ParamPositionList:
		_, err := ParsePositionList(value)
		ok = err == nil
	default:
		return fmt.Errorf("%w: kind %q", domain.ErrInvalidValue, kind)
	}
	if !ok {
		return fmt.Errorf("%w: %q is not a valid %s", domain.ErrInvalidValue, value, kind)
	}
	return nil
}

// ParseBool decodes a bool value.
func ParseBool(value string) (bool, error) {
	if err := Validate(domain.ParamBool, value); err != nil {
		return false, err
	}
	return value == "true", nil
}

// ParseFloat decodes a float value.
func ParseFloat(value string) (float64, error) {
	if err := Validate(domain.ParamFloat, value); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(value, 64)
}

// ParseInt decodes a signed integer value.
func ParseInt(value string) (int64, error) {
	if err := Validate(domain.ParamInt, value); err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(value, 10, intBits)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidValue, err)
	}
	return n, nil
}

// ParseUint decodes an unsigned integer value.
func ParseUint(value string) (uint64, error) {
	if err := Validate(domain.ParamUint, value); err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(value, 10, intBits)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidValue, err)
	}
	return n, nil
}

// ParsePosition decodes "x,y".
func ParsePosition(value string) (domain.Position, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return domain.Position{}, fmt.Errorf("%w: position %q needs two components", domain.ErrInvalidValue, value)
	}
	var p domain.Position
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if !floatPattern.MatchString(part) {
			return domain.Position{}, fmt.Errorf("%w: position component %q", domain.ErrInvalidValue, part)
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return domain.Position{}, fmt.Errorf("%w: %v", domain.ErrInvalidValue, err)
		}
		p[i] = f
	}
	return p, nil
}

// ParsePositionList decodes "x1,y1;x2,y2;...". A trailing separator is accepted.
func ParsePositionList(value string) ([]domain.Position, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(value, ";")
	if value == "" {
		return nil, fmt.Errorf("%w: empty position list", domain.ErrInvalidValue)
	}
	items := strings.Split(value, ";")
	out := make([]domain.Position, 0, len(items))
	for _, item := range items {
		p, err := ParsePosition(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// FormatBool encodes a bool value.
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}

// FormatFloat encodes a float with the shortest exact representation.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatPosition encodes "x,y".
func FormatPosition(p domain.Position) string {
	return FormatFloat(p[0]) + "," + FormatFloat(p[1])
}

// FormatPositionList encodes "x1,y1;x2,y2".
func FormatPositionList(ps []domain.Position) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = FormatPosition(p)
	}
	return strings.Join(parts, ";")
}
