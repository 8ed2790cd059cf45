package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/tool"
	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"
)

func runTools(ctx context.Context, cfg config.Config, args []string) error {
	fs := newFlagSet("tools")
	schema := fs.Bool("schema", false, "print each tool's parameter schema")
	durable := fs.Bool("temporal", false, "place calls through the Temporal workflow")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	reg, err := a.tools(ctx, *durable)
	if err != nil {
		return err
	}

	if fs.NArg() > 0 {
		out, err := reg.Invoke(ctx, fs.Arg(0), strings.Join(fs.Args()[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, out)
		return nil
	}

	for _, t := range reg.List() {
		fmt.Fprintf(os.Stdout, "%s\n  %s\n", color.YellowString(t.Name()), strings.ReplaceAll(strings.TrimSpace(t.Description()), "\n", "\n  "))
		if *schema {
			params, err := tool.Parameters(t)
			if err != nil {
				return err
			}
			pp.Println(params)
		}
	}
	return nil
}
