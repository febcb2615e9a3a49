package gocas

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON encodes e as a JSON object:
//
//	{"type":"num","value":"1/2","exact":true}
//	{"type":"name","name":"x"}
//	{"type":"op","op":"+","left":{...},"right":{...}}
//	{"type":"neg","arg":{...}}
//	{"type":"func","name":"sin","arg":{...}}
//	{"type":"transform","name":"integrate","target":{...},"var":"x"}
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(ToMap(e))
	return string(b), err
}

// ToMap returns the generic map form that ToJSON marshals.
func ToMap(e Expr) map[string]interface{} {
	switch v := e.(type) {
	case *Num:
		return map[string]interface{}{"type": "num", "value": v.String(), "exact": v.Exact()}
	case *Name:
		return map[string]interface{}{"type": "name", "name": v.id}
	case *BinOp:
		return map[string]interface{}{"type": "op", "op": v.op.String(), "left": ToMap(v.left), "right": ToMap(v.right)}
	case *Neg:
		return map[string]interface{}{"type": "neg", "arg": ToMap(v.arg)}
	case *Func:
		return map[string]interface{}{"type": "func", "name": v.name, "arg": ToMap(v.arg)}
	case *Transform:
		return map[string]interface{}{"type": "transform", "name": v.name, "target": ToMap(v.target), "var": v.v.id}
	}
	return nil
}

// ParseJSON decodes a JSON document produced by ToJSON.
func ParseJSON(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExpression, err)
	}
	return FromJSON(m)
}

// FromJSON decodes the generic map form. Every error wraps
// ErrMalformedExpression.
func FromJSON(data map[string]interface{}) (Expr, error) {
	e, err := fromJSON(data, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExpression, err)
	}
	return e, nil
}

func fromJSON(data map[string]interface{}, depth int) (Expr, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subExpr := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := fromJSON(m, depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		return numFromJSON(data)

	case "name":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "op":
		sym, err := subString("op")
		if err != nil {
			return nil, err
		}
		if len(sym) != 1 || !Op(sym[0]).Valid() {
			return nil, fmt.Errorf("op: unknown operator %q", sym)
		}
		l, err := subExpr("left")
		if err != nil {
			return nil, err
		}
		r, err := subExpr("right")
		if err != nil {
			return nil, err
		}
		return newBinOp(Op(sym[0]), l, r), nil

	case "neg":
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		return Negate(arg), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		return Call(name, arg), nil

	case "transform":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if name != TransformIntegrate {
			return nil, fmt.Errorf("transform: unknown transform %q", name)
		}
		target, err := subExpr("target")
		if err != nil {
			return nil, err
		}
		v, err := subString("var")
		if err != nil {
			return nil, err
		}
		return Integral(target, v), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

// numFromJSON accepts "value" as a string ("1/2", "0.5") or a JSON number.
// "exact" defaults to true for strings without a decimal point or exponent.
func numFromJSON(data map[string]interface{}) (Expr, error) {
	valAny, ok := data["value"]
	if !ok {
		return nil, fmt.Errorf("num: missing 'value'")
	}
	exact, hasExact := data["exact"].(bool)
	switch val := valAny.(type) {
	case string:
		if val == "" {
			return nil, fmt.Errorf("num: 'value' must be a non-empty string")
		}
		if !hasExact {
			t := token{lit: val}
			e, err := parseNumber(t)
			if err != nil {
				return nil, fmt.Errorf("invalid num value: %s", val)
			}
			return e, nil
		}
		if !exact {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid num value: %s", val)
			}
			return NFloat(f), nil
		}
		r, ok := new(big.Rat).SetString(val)
		if !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		return &Num{rat: r}, nil
	case float64:
		if hasExact && exact {
			r := new(big.Rat)
			if r.SetFloat64(val) == nil {
				return nil, fmt.Errorf("invalid num value: %v", val)
			}
			return &Num{rat: r}, nil
		}
		return NFloat(val), nil
	}
	return nil, fmt.Errorf("num: 'value' must be a string or number")
}
