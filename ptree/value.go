package ptree

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// scalarText converts a host scalar to its stored text form. The accepted
// kinds form a closed table: nil becomes "none", booleans "true"/"false",
// integers and floats locale-free decimal text, strings are verbatim.
// Anything else fails with ErrBadValue.
func scalarText(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "none", nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	case string:
		return x, nil
	case int:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrBadValue, v)
	}
}

// asNode turns an accepted scalar or subtree into an owned node. A *Node
// argument is deep-copied so the tree never shares children with the caller.
func asNode(v any) (*Node, error) {
	if sub, ok := v.(*Node); ok {
		return sub.Clone(), nil
	}
	text, err := scalarText(v)
	if err != nil {
		return nil, err
	}
	return FromString(text), nil
}

// Bool parses the node value as a boolean. Only the exact strings "true"
// and "false" parse; everything else fails with ErrBadData.
func (n *Node) Bool() (bool, error) {
	switch n.value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a bool", ErrBadData, n.value)
}

// Int parses the node value as a signed 64-bit decimal integer.
func (n *Node) Int() (int64, error) {
	i, err := strconv.ParseInt(n.value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrBadData, n.value)
	}
	return i, nil
}

// Float parses the node value as a 64-bit float.
func (n *Node) Float() (float64, error) {
	f, err := strconv.ParseFloat(n.value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a float", ErrBadData, n.value)
	}
	return f, nil
}

// CompareBool compares the node value, parsed as a boolean, to v.
// false orders before true.
func (n *Node) CompareBool(v bool) (int, error) {
	b, err := n.Bool()
	if err != nil {
		return 0, err
	}
	if b == v {
		return 0, nil
	}
	if !b {
		return -1, nil
	}
	return 1, nil
}

// CompareInt compares the node value, parsed as an integer, to v.
func (n *Node) CompareInt(v int64) (int, error) {
	i, err := n.Int()
	if err != nil {
		return 0, err
	}
	return cmp.Compare(i, v), nil
}

// CompareFloat compares the node value, parsed as a float, to v.
func (n *Node) CompareFloat(v float64) (int, error) {
	f, err := n.Float()
	if err != nil {
		return 0, err
	}
	return cmp.Compare(f, v), nil
}

// CompareString compares the node value to v as text.
func (n *Node) CompareString(v string) int {
	return strings.Compare(n.value, v)
}
