package table

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseValue converts a raw text cell into a typed scalar. It tries
// integer, then float, then boolean, and falls back to the string itself.
func ParseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// ConvertValue converts a raw text cell to the named type. Supported
// types: string, int, float, bool.
func ConvertValue(s, typ string) (any, error) {
	switch typ {
	case "string":
		return s, nil
	case "int":
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to int: %w", s, err)
		}
		return i, nil
	case "float":
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to float: %w", s, err)
		}
		return f, nil
	case "bool":
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to bool: %w", s, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown column type %q", typ)
	}
}
