/*
Package tool defines the capability interface the assistant invokes and the registry
that holds the available tools.

Every tool has the same shape: a name, a description the model reads to decide when to
use it, and Invoke, which takes a single string and returns a single string. Tools that
need structured input parse it themselves, usually from a pipe-delimited string such as
"recipient|subject|text".

# Defining tools

	search := tool.Must(func(ctx context.Context, input string) (string, error) {
		return lookup(ctx, input)
	},
		tool.Name("duckduckgo_search"),
		tool.Description("searches the web for a query"),
	)

# Registry

	reg := tool.NewRegistry()
	if err := reg.Register(search, callTool); err != nil {
		return err // duplicate name
	}
	out, err := reg.Invoke(ctx, "duckduckgo_search", "wedding venues in Austin")

Invoking a name that is not registered fails with types.ErrUnknownTool.

# Schema

Models see every tool as a function taking one string property, "input". Schema builds
that JSON schema with invopop/jsonschema so the property description can be tuned per
tool with InputDescription.
*/
package tool
