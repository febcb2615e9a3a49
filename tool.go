package gocas

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/exp/slices"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result   interface{} `json:"result,omitempty"`
	String   string      `json:"string,omitempty"`
	Gnuplot  string      `json:"gnuplot,omitempty"`
	Resolved *bool       `json:"resolved,omitempty"`
	Error    string      `json:"error,omitempty"`
}

type toolSpec struct {
	name        string
	description string
	required    []string
	props       map[string]string
}

var toolSpecs = []toolSpec{
	{"parse", "Parse linear notation into an expression object", []string{"expr"}, map[string]string{"expr": "string"}},
	{"simplify", "One bottom-up pass of numeric folding and identity elimination", []string{"expr"}, map[string]string{"expr": "object"}},
	{"diff", "Derivative with respect to var", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}},
	{"diffn", "nth derivative. Requires n (int)", []string{"expr", "var", "n"}, map[string]string{"expr": "object", "var": "string", "n": "integer"}},
	{"gradient", "Partial derivatives for each of vars (string[])", []string{"expr", "vars"}, map[string]string{"expr": "object", "vars": "array"}},
	{"integrate", "Antiderivative over a closed rule set; unresolved parts stay as integrate[expr, var]", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}},
	{"render", "Render an expression. Optional mode: standard or gnuplot", []string{"expr"}, map[string]string{"expr": "object", "mode": "string"}},
	{"free_symbols", "Return variable names in order of appearance", []string{"expr"}, map[string]string{"expr": "object"}},
	{"fingerprint", "Structural 64-bit hash of an expression, hex encoded", []string{"expr"}, map[string]string{"expr": "object"}},
	{"mcp_spec", "Return this tool schema", []string{}, map[string]string{}},
}

// ToolNames lists the tools Toolbox.Handle understands.
func ToolNames() []string {
	names := make([]string, len(toolSpecs))
	for i, t := range toolSpecs {
		names[i] = t.name
	}
	slices.Sort(names)
	return names
}

// Toolbox dispatches tool calls. MaxDepth bounds the depth of expressions
// read from params, as Parser.MaxDepth does; zero means the package MaxDepth.
type Toolbox struct {
	MaxDepth int
}

// ExprParam reads an expression parameter with the default limits.
func ExprParam(params map[string]interface{}, key string) (Expr, error) {
	return Toolbox{}.ExprParam(params, key)
}

// HandleToolCall dispatches req with the default limits.
func HandleToolCall(req ToolRequest) ToolResponse {
	return Toolbox{}.Handle(req)
}

// ExprParam reads an expression parameter. Strings are parsed as linear
// notation; objects are decoded with FromJSON. Both are held to tb.MaxDepth.
func (tb Toolbox) ExprParam(params map[string]interface{}, key string) (Expr, error) {
	v, ok := params[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	p := &Parser{MaxDepth: tb.MaxDepth}
	switch val := v.(type) {
	case string:
		return p.Parse(val)
	case map[string]interface{}:
		e, err := FromJSON(val)
		if err != nil {
			return nil, err
		}
		if Depth(e) > p.limit() {
			return nil, fmt.Errorf("param %s: %w: depth exceeds %d", key, ErrTooDeep, p.limit())
		}
		return e, nil
	}
	return nil, fmt.Errorf("invalid type for param %s", key)
}

// Handle executes req and reports failures in the response.
func (tb Toolbox) Handle(req ToolRequest) ToolResponse {
	getExpr := func(key string) (Expr, error) { return tb.ExprParam(req.Params, key) }
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getStrings := func(key string) ([]string, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]string, len(raw))
		for i, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be string", key, i)
			}
			result[i] = s
		}
		return result, nil
	}
	getInt := func(key string) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		var f float64
		switch n := v.(type) {
		case float64:
			f = n
		case int:
			f = float64(n)
		case json.Number:
			var err error
			if f, err = n.Float64(); err != nil {
				return 0, fmt.Errorf("param %s: %w", key, err)
			}
		default:
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return 0, fmt.Errorf("param %s must be an integer, got %v", key, v)
		}
		return int(f), nil
	}
	respond := func(e Expr) ToolResponse {
		resolved := Resolved(e)
		return ToolResponse{
			Result:   ToMap(e),
			String:   String(e),
			Gnuplot:  RenderString(e, Gnuplot),
			Resolved: &resolved,
		}
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	if slices.IndexFunc(toolSpecs, func(t toolSpec) bool { return t.name == req.Tool }) < 0 {
		return fail(fmt.Errorf("unknown tool: %s", req.Tool))
	}
	if req.Tool == "mcp_spec" {
		return ToolResponse{Result: MCPToolSpec()}
	}

	expr, err := getExpr("expr")
	if err != nil {
		return fail(err)
	}

	switch req.Tool {
	case "parse":
		return respond(expr)

	case "simplify":
		out, err := Simplify(expr)
		if err != nil {
			return fail(err)
		}
		return respond(out)

	case "diff":
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		out, err := Diff(expr, v)
		if err != nil {
			return fail(err)
		}
		return respond(out)

	case "diffn":
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		n, err := getInt("n")
		if err != nil {
			return fail(err)
		}
		out, err := DiffN(expr, v, n)
		if err != nil {
			return fail(err)
		}
		return respond(out)

	case "gradient":
		vars, err := getStrings("vars")
		if err != nil {
			return fail(err)
		}
		grad, err := Gradient(expr, vars)
		if err != nil {
			return fail(err)
		}
		objs := make([]map[string]interface{}, len(grad))
		strs := make([]string, len(grad))
		for i, g := range grad {
			objs[i] = ToMap(g)
			strs[i] = String(g)
		}
		return ToolResponse{Result: objs, String: fmt.Sprint(strs)}

	case "integrate":
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		return respond(Integrate(expr, v))

	case "render":
		mode := Standard
		if m, ok := req.Params["mode"]; ok {
			switch m {
			case "standard":
			case "gnuplot":
				mode = Gnuplot
			default:
				return fail(fmt.Errorf("unknown render mode %v", m))
			}
		}
		toks := Render(expr, mode)
		return ToolResponse{Result: toks, String: RenderString(expr, mode)}

	case "free_symbols":
		names := Names(expr)
		if names == nil {
			names = []string{}
		}
		return ToolResponse{Result: names}

	case "fingerprint":
		fp := strconv.FormatUint(Fingerprint(expr), 16)
		return ToolResponse{Result: fp, String: fp}
	}
	return fail(fmt.Errorf("unknown tool: %s", req.Tool))
}

// MCPToolSpec returns the JSON tool listing for agent registration.
func MCPToolSpec() string {
	tools := make([]map[string]interface{}, len(toolSpecs))
	for i, t := range toolSpecs {
		tools[i] = ts(t.name, t.description, t.required, t.props)
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
