// Package contacts exposes the configured contact list as an assistant tool.
package contacts

import (
	"context"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/tool"
	"github.com/goccy/go-json"
)

const Name = "get_all_contacts"

func New(list []config.Contact) tool.Definition {
	if list == nil {
		list = []config.Contact{}
	}
	return tool.Must(func(context.Context, string) (string, error) {
		b, err := json.Marshal(list)
		if err != nil {
			return "", err
		}
		return string(b), nil
	},
		tool.Name(Name),
		tool.Description("Get contacts. Returns a JSON list of {name, phone}. The input is ignored."),
	)
}
