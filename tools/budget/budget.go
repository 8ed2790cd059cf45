// Package budget breaks an event budget down by category.
package budget

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/FrostGod/EventDash/tool"
)

const Name = "event_budget"

// Line is one budget category.
type Line struct {
	Category string
	Amount   float64
}

// Default is the starting budget when the user has not given numbers.
var Default = []Line{
	{Category: "Venue", Amount: 5000},
	{Category: "Catering", Amount: 3000},
	{Category: "Decorations", Amount: 1000},
	{Category: "Entertainment", Amount: 2000},
	{Category: "Miscellaneous", Amount: 1000},
}

// Parse reads "Venue=5000, Catering=3000" (commas, semicolons or newlines between pairs).
// Repeated categories are summed in first-seen order. Empty input yields Default.
func Parse(input string) ([]Line, error) {
	fields := splitPairs(input)
	if len(fields) == 0 {
		return append([]Line(nil), Default...), nil
	}

	var lines []Line
	index := map[string]int{}
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		category, raw, ok := strings.Cut(field, "=")
		if !ok {
			category, raw, ok = strings.Cut(field, ":")
		}
		category = strings.TrimSpace(category)
		if !ok || category == "" {
			return nil, fmt.Errorf("budget entry %q: expected category=amount", field)
		}
		raw = strings.NewReplacer("$", "", ",", "", "_", "").Replace(strings.TrimSpace(raw))
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil || amount < 0 {
			return nil, fmt.Errorf("budget entry %q: invalid amount", field)
		}
		if i, seen := index[category]; seen {
			lines[i].Amount += amount
			continue
		}
		index[category] = len(lines)
		lines = append(lines, Line{Category: category, Amount: amount})
	}
	if len(lines) == 0 {
		return append([]Line(nil), Default...), nil
	}
	return lines, nil
}

// splitPairs separates entries on semicolons and newlines, and on commas only when the text
// after the comma starts a new category=amount pair. "$5,000" therefore stays one amount.
func splitPairs(input string) []string {
	var fields []string
	for _, chunk := range strings.FieldsFunc(input, func(r rune) bool { return r == ';' || r == '\n' }) {
		start := len(fields)
		for _, part := range strings.Split(chunk, ",") {
			if len(fields) > start && !strings.ContainsAny(part, "=:") {
				fields[len(fields)-1] += "," + part
				continue
			}
			fields = append(fields, part)
		}
	}
	return fields
}

// Render formats the breakdown as a markdown table with each category's share of the total.
func Render(lines []Line) string {
	var total float64
	for _, l := range lines {
		total += l.Amount
	}

	var b strings.Builder
	b.WriteString("| Category | Amount | Share |\n|---|---:|---:|\n")
	for _, l := range lines {
		share := 0.0
		if total > 0 {
			share = l.Amount / total * 100
		}
		fmt.Fprintf(&b, "| %s | %s | %.1f%% |\n", l.Category, money(l.Amount), share)
	}
	fmt.Fprintf(&b, "| **Total** | **%s** | 100.0%% |\n", money(total))
	return b.String()
}

func money(v float64) string {
	cents := int64(math.Round(v * 100))
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if cents%100 == 0 {
		return "$" + b.String()
	}
	return fmt.Sprintf("$%s.%02d", b.String(), cents%100)
}

func New() tool.Definition {
	return tool.Must(func(_ context.Context, input string) (string, error) {
		lines, err := Parse(input)
		if err != nil {
			return "", err
		}
		return Render(lines), nil
	},
		tool.Name(Name),
		tool.Description("Creates an event budget breakdown. Call it when the user is satisfied with the plan. "+
			"Input is a list of category=amount pairs such as 'Venue=5000, Catering=3000'; empty input uses a default budget."),
		tool.InputDescription("category=amount pairs separated by commas, or empty for the default budget"),
	)
}
