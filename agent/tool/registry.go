package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
)

// ParamType is the wire type of one tool argument.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
)

// Param describes one argument of a capability schema.
type Param struct {
	Type     ParamType
	Desc     string
	Required bool
	Default  any
}

// Args holds validated, schema-conformant arguments. Accessors assume
// validation already ran; they return zero values otherwise.
type Args map[string]any

func (a Args) String(key string) string {
	v, _ := a[key].(string)
	return v
}

func (a Args) Int(key string) int {
	v, _ := a[key].(int)
	return v
}

// ExecFunc performs the capability's (stubbed) side effect and returns a
// guest-facing outcome string. Executors are pure functions of their inputs
// and safe to retry; they must degrade to fixed "not found" outcomes when
// the context lacks a guest or booking.
type ExecFunc func(ctx context.Context, args Args, gc contractx.GuestContext) string

// Descriptor is one entry of the capability catalog.
type Descriptor struct {
	Name   string
	Desc   string
	Params map[string]Param
	Exec   ExecFunc
}

// ValidateArgs checks raw decision-function arguments against the schema:
// required fields must be present and non-blank, types must match (JSON
// numbers are coerced to int for integer params), defaults fill the gaps.
// Unknown extra fields are dropped.
func (d Descriptor) ValidateArgs(raw map[string]any) (Args, error) {
	out := make(Args, len(d.Params))
	for name, p := range d.Params {
		v, ok := raw[name]
		if !ok {
			if p.Required {
				return nil, fmt.Errorf("%w: %s is required", contractx.ErrBadArguments, name)
			}
			if p.Default != nil {
				out[name] = p.Default
			}
			continue
		}
		coerced, err := coerce(name, p, v)
		if err != nil {
			return nil, err
		}
		out[name] = coerced
	}
	return out, nil
}

func coerce(name string, p Param, v any) (any, error) {
	switch p.Type {
	case ParamString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string", contractx.ErrBadArguments, name)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			if p.Required {
				return nil, fmt.Errorf("%w: %s is required", contractx.ErrBadArguments, name)
			}
			if p.Default != nil {
				return p.Default, nil
			}
		}
		return s, nil
	case ParamInteger:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n != float64(int(n)) {
				return nil, fmt.Errorf("%w: %s must be a whole number", contractx.ErrBadArguments, name)
			}
			return int(n), nil
		default:
			return nil, fmt.Errorf("%w: %s must be an integer", contractx.ErrBadArguments, name)
		}
	default:
		return nil, fmt.Errorf("%w: %s has unsupported type %q", contractx.ErrBadArguments, name, p.Type)
	}
}

// Run validates nothing; callers must pass ValidateArgs output.
func (d Descriptor) Run(ctx context.Context, args Args, gc contractx.GuestContext) contractx.ToolOutcome {
	return contractx.ToolOutcome{
		Tool:    d.Name,
		Outcome: d.Exec(ctx, args, gc),
	}
}

// Clarification converts an argument-validation failure into the outcome
// text for that selection, so one malformed call never fails the turn.
func Clarification(toolName string, err error) contractx.ToolOutcome {
	reason := strings.TrimPrefix(err.Error(), contractx.ErrBadArguments.Error()+": ")
	return contractx.ToolOutcome{
		Tool:    toolName,
		Outcome: fmt.Sprintf("I couldn't action that %s request (%s). Could you share the missing details?", strings.ReplaceAll(toolName, "_", " "), reason),
	}
}

// Registry is the closed capability catalog, resolved once at startup and
// immutable afterwards. Safe for concurrent reads.
type Registry struct {
	order  []string
	byName map[string]Descriptor
}

// NewRegistry builds the full concierge catalog. The knowledge base backs
// the property_info capability.
func NewRegistry(kb contractx.KnowledgeBase) (*Registry, error) {
	r := &Registry{byName: make(map[string]Descriptor, 16)}
	for _, d := range descriptors(kb) {
		if err := r.register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(d Descriptor) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if d.Exec == nil {
		return fmt.Errorf("tool %s has no executor", name)
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("duplicate tool name %s", name)
	}
	d.Name = name
	r.byName[name] = d
	r.order = append(r.order, name)
	return nil
}

// Lookup resolves a capability by name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.byName[strings.TrimSpace(name)]
	return d, ok
}

// Names returns catalog names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// ToolInfos exports the catalog in the shape the chat model binds to.
func (r *Registry) ToolInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		d := r.byName[name]
		params := make(map[string]*schema.ParameterInfo, len(d.Params))
		for pname, p := range d.Params {
			info := &schema.ParameterInfo{
				Desc:     p.Desc,
				Required: p.Required,
			}
			switch p.Type {
			case ParamInteger:
				info.Type = schema.Integer
			default:
				info.Type = schema.String
			}
			params[pname] = info
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        d.Name,
			Desc:        d.Desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

// CatalogText renders the catalog for the briefing.
func (r *Registry) CatalogText() string {
	var b strings.Builder
	for _, name := range r.order {
		d := r.byName[name]
		fmt.Fprintf(&b, "- %s: %s\n", d.Name, d.Desc)
	}
	return strings.TrimRight(b.String(), "\n")
}
