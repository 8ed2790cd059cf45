package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FrostGod/EventDash/tool"
	"github.com/fogfish/opts"
	"github.com/goccy/go-json"
)

const (
	DuckDuckGoName       = "duckduckgo_search"
	defaultDuckDuckGoURL = "https://api.duckduckgo.com"
	defaultUserAgent     = "eventdash/1.0"
	maxResults           = 5
	maxTitleLength       = 50
)

// DuckDuckGo queries the Instant Answer API.
type DuckDuckGo struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var (
	WithDuckDuckGoURL = opts.ForName[DuckDuckGo, string]("baseURL")
	WithUserAgent     = opts.ForName[DuckDuckGo, string]("userAgent")
	WithDDGHTTPClient = opts.ForName[DuckDuckGo, *http.Client]("httpClient")
)

func NewDuckDuckGo(options ...opts.Option[DuckDuckGo]) (*DuckDuckGo, error) {
	d := &DuckDuckGo{
		baseURL:    defaultDuckDuckGoURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if err := opts.Apply(d, options); err != nil {
		return nil, err
	}
	d.baseURL = strings.TrimRight(d.baseURL, "/")
	return d, nil
}

type instantAnswer struct {
	Heading          string `json:"Heading"`
	Answer           string `json:"Answer"`
	AbstractText     string `json:"AbstractText"`
	AbstractSource   string `json:"AbstractSource"`
	AbstractURL      string `json:"AbstractURL"`
	Definition       string `json:"Definition"`
	DefinitionSource string `json:"DefinitionSource"`
	RelatedTopics    []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// Result is one search hit.
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (d *DuckDuckGo) Search(ctx context.Context, query string) (string, []Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil, fmt.Errorf("query cannot be empty")
	}

	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1", d.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var answer instantAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return "", nil, fmt.Errorf("failed to parse response: %w", err)
	}

	var summary []string
	if answer.Answer != "" {
		summary = append(summary, "Answer: "+answer.Answer)
	}
	if answer.AbstractText != "" {
		summary = append(summary, "Abstract: "+answer.AbstractText)
		if answer.AbstractSource != "" {
			summary = append(summary, "Source: "+answer.AbstractSource)
		}
	}
	if answer.Definition != "" {
		summary = append(summary, "Definition: "+answer.Definition)
	}

	var results []Result
	for _, topic := range answer.RelatedTopics {
		if len(results) >= maxResults {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		results = append(results, Result{Title: titleOf(topic.Text), URL: topic.FirstURL, Description: topic.Text})
	}

	if len(summary) == 0 {
		return fmt.Sprintf("Found %d results for query '%s'", len(results), query), results, nil
	}
	return strings.Join(summary, " | "), results, nil
}

func titleOf(text string) string {
	title, _, _ := strings.Cut(text, " - ")
	r := []rune(title)
	if len(r) > maxTitleLength {
		return string(r[:maxTitleLength]) + "..."
	}
	return title
}

// Tool wraps Search for the assistant. The output is the summary followed by one line per hit.
func (d *DuckDuckGo) Tool() tool.Definition {
	return tool.Must(func(ctx context.Context, input string) (string, error) {
		summary, results, err := d.Search(ctx, input)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		b.WriteString(summary)
		for _, r := range results {
			fmt.Fprintf(&b, "\n- %s (%s): %s", r.Title, r.URL, r.Description)
		}
		return b.String(), nil
	},
		tool.Name(DuckDuckGoName),
		tool.Description("Search DuckDuckGo instant answers for factual information about places, companies and "+
			"definitions. Not suited to live data such as prices or availability."),
		tool.InputDescription("the search query"),
	)
}
