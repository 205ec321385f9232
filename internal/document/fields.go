package document

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// ErrMissingField is returned for a required key that is absent.
var ErrMissingField = errors.New("missing field")

// FieldError reports a value that could not be converted to its field type.
type FieldError struct {
	Key   string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: cannot parse %q: %v", e.Key, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func (n *Node) scalar(key string) (string, bool) {
	c, ok := n.Child(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(c.Value), true
}

// String returns the value of key, or def when the key is absent.
func (n *Node) String(key, def string) string {
	if v, ok := n.scalar(key); ok {
		return v
	}
	return def
}

// RequiredString returns the value of key and fails when the key is absent
// or blank.
func (n *Node) RequiredString(key string) (string, error) {
	v, ok := n.scalar(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s in %q", ErrMissingField, key, n.Key)
	}
	return v, nil
}

// Bool reads key as a boolean ("True", "false", "1", ...).
func (n *Node) Bool(key string, def bool) (bool, error) {
	v, ok := n.scalar(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, &FieldError{Key: key, Value: v, Err: err}
	}
	return b, nil
}

// Uint16 reads key as an unsigned 16-bit integer.
func (n *Node) Uint16(key string, def uint16) (uint16, error) {
	v, ok := n.scalar(key)
	if !ok {
		return def, nil
	}
	u, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		return def, &FieldError{Key: key, Value: v, Err: err}
	}
	return uint16(u), nil
}

// Point reads key as "x,y".
func (n *Node) Point(key string, def image.Point) (image.Point, error) {
	v, ok := n.scalar(key)
	if !ok {
		return def, nil
	}
	p, err := ParsePoint(v)
	if err != nil {
		return def, &FieldError{Key: key, Value: v, Err: err}
	}
	return p, nil
}

// Color reads key as "r,g,b" or "a,r,g,b".
func (n *Node) Color(key string, def color.RGBA) (color.RGBA, error) {
	v, ok := n.scalar(key)
	if !ok {
		return def, nil
	}
	c, err := ParseColor(v)
	if err != nil {
		return def, &FieldError{Key: key, Value: v, Err: err}
	}
	return c, nil
}

// StringList reads key as a comma-separated list. Empty items are dropped.
func (n *Node) StringList(key string, def []string) []string {
	v, ok := n.scalar(key)
	if !ok {
		return def
	}
	return SplitList(v)
}

// SplitList splits a comma-separated value into trimmed, non-empty items.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParsePoint parses "x,y".
func ParsePoint(v string) (image.Point, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("expected 2 components, got %d", len(parts))
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return image.Point{}, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(x, y), nil
}

// ParseColor parses "r,g,b" (opaque) or "a,r,g,b".
func ParseColor(v string) (color.RGBA, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, fmt.Errorf("expected 3 or 4 components, got %d", len(parts))
	}

	vals := make([]uint8, len(parts))
	for i, p := range parts {
		u, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return color.RGBA{}, err
		}
		vals[i] = uint8(u)
	}

	if len(vals) == 3 {
		return color.RGBA{R: vals[0], G: vals[1], B: vals[2], A: 255}, nil
	}
	return color.RGBA{A: vals[0], R: vals[1], G: vals[2], B: vals[3]}, nil
}
