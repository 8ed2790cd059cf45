package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/FrostGod/EventDash/types"
)

type lookup func(string) string

func (l lookup) str(key, def string) string {
	s := strings.TrimSpace(l(key))
	if s == "" {
		return def
	}
	return s
}

func (l lookup) list(key string) []string {
	raw := l.str(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (l lookup) duration(key string, def time.Duration) (time.Duration, error) {
	raw := l.str(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &types.ConfigurationError{Component: key, Err: err}
	}
	if d < 0 {
		return 0, &types.ConfigurationError{Component: key, Err: fmt.Errorf("negative duration %s", raw)}
	}
	return d, nil
}

func (l lookup) integer(key string, def int) (int, error) {
	raw := l.str(key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &types.ConfigurationError{Component: key, Err: err}
	}
	return n, nil
}
