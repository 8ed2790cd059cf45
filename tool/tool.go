package tool

import (
	"context"
	"errors"
	"strings"

	"github.com/FrostGod/EventDash/pkg/jsonx"
	"github.com/FrostGod/EventDash/pkg/stdx"
	"github.com/fogfish/opts"
	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
)

// Tool is a named capability with string input and string output.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, input string) (string, error)
}

// Func is the signature of a tool implementation.
type Func func(ctx context.Context, input string) (string, error)

// Input is the argument object models send when calling a tool.
type Input struct {
	Input string `json:"input" jsonschema:"required"`
}

const defaultInputDescription = "the input to the tool"

// Definition is a Tool built from a Func.
type Definition struct {
	name             string
	description      string
	inputDescription string
	fn               Func
}

// Option configures a Definition.
type Option = opts.Option[Definition]

var (
	Name             = opts.ForName[Definition, string]("name")
	Description      = opts.ForName[Definition, string]("description")
	InputDescription = opts.ForName[Definition, string]("inputDescription")
)

var errNoFunction = errors.New("tool function is required")

// New builds a Definition. A name is required.
func New(fn Func, options ...Option) (Definition, error) {
	if fn == nil {
		return Definition{}, errNoFunction
	}
	def := Definition{fn: fn, inputDescription: defaultInputDescription}
	if err := opts.Apply(&def, options); err != nil {
		return Definition{}, err
	}
	if strings.TrimSpace(def.name) == "" {
		return Definition{}, errors.New("tool name is required")
	}
	return def, nil
}

// Must is New for package-level tool declarations; it panics on error.
func Must(fn Func, options ...Option) Definition {
	return stdx.Must1(New(fn, options...))
}

func (d Definition) Name() string        { return d.name }
func (d Definition) Description() string { return d.description }

func (d Definition) Invoke(ctx context.Context, input string) (string, error) {
	return d.fn(ctx, input)
}

var inputReflector = jsonschema.Reflector{
	Anonymous:      true,
	DoNotReference: true,
	ExpandedStruct: true,
}

// Schema returns the JSON schema of the tool arguments.
func (d Definition) Schema() *jsonschema.Schema {
	return InputSchema(d.inputDescription)
}

// InputSchema is the argument schema shared by all tools.
func InputSchema(description string) *jsonschema.Schema {
	schema := inputReflector.Reflect(&Input{})
	schema.Version = ""
	if prop, ok := schema.Properties.Get("input"); ok && description != "" {
		prop.Description = description
	}
	return schema
}

// Parameters returns the schema of t as a generic map, the form model SDKs accept.
func Parameters(t Tool) (map[string]any, error) {
	if d, ok := t.(interface{ Schema() *jsonschema.Schema }); ok {
		return jsonx.ToDynamicJSON(d.Schema())
	}
	return jsonx.ToDynamicJSON(InputSchema(defaultInputDescription))
}

// DecodeInput extracts the input string from model-supplied arguments. Arguments that are
// not a JSON object with an "input" field are passed through unchanged.
func DecodeInput(arguments string) string {
	trimmed := strings.TrimSpace(arguments)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return arguments
	}
	if !gjson.Get(trimmed, "input").Exists() {
		return arguments
	}
	return jsonx.StringArg(trimmed, "input")
}
