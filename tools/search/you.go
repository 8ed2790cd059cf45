package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/tool"
	"github.com/FrostGod/EventDash/types"
	"github.com/fogfish/opts"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

const (
	ServicesName         = "find_services"
	defaultYouURL        = "https://api.ydc-index.io"
	defaultNumWebResults = 3
)

// You searches the web through the You.com search API.
type You struct {
	apiKey     string
	baseURL    string
	numResults int
	httpClient *http.Client
}

var (
	WithYouHTTPClient = opts.ForName[You, *http.Client]("httpClient")
	WithNumResults    = opts.ForName[You, int]("numResults")
)

func NewYou(cfg config.Search, options ...opts.Option[You]) (*You, error) {
	if cfg.YouAPIKey == "" {
		return nil, &types.ConfigurationError{Component: "you.com search", Missing: []string{"YOUAPIKEY"}}
	}
	y := &You{
		apiKey:     cfg.YouAPIKey,
		baseURL:    cfg.YouBaseURL,
		numResults: defaultNumWebResults,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if err := opts.Apply(y, options); err != nil {
		return nil, err
	}
	if y.baseURL == "" {
		y.baseURL = defaultYouURL
	}
	y.baseURL = strings.TrimRight(y.baseURL, "/")
	return y, nil
}

func (y *You) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("num_web_results", strconv.Itoa(y.numResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", y.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("you.com returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var results []Result
	gjson.GetBytes(body, "hits").ForEach(func(_, hit gjson.Result) bool {
		desc := hit.Get("description").String()
		if snippets := hit.Get("snippets").Array(); len(snippets) > 0 {
			desc = strings.TrimSpace(desc + " " + snippets[0].String())
		}
		results = append(results, Result{
			Title:       hit.Get("title").String(),
			URL:         hit.Get("url").String(),
			Description: desc,
		})
		return len(results) < y.numResults
	})
	return results, nil
}

// Service is a provider found for the user.
type Service struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ServicesTool searches for an event service near a location. Input is "service|location";
// a bare query is used as is.
func (y *You) ServicesTool() tool.Definition {
	return tool.Must(func(ctx context.Context, input string) (string, error) {
		query := input
		if service, location, ok := strings.Cut(input, "|"); ok {
			query = fmt.Sprintf("%s in %s", strings.TrimSpace(service), strings.TrimSpace(location))
		}
		results, err := y.Search(ctx, query)
		if err != nil {
			return "", err
		}
		services := make([]Service, 0, len(results))
		for _, r := range results {
			services = append(services, Service{Name: r.Title, URL: r.URL, Description: r.Description})
		}
		b, err := json.Marshal(services)
		if err != nil {
			return "", err
		}
		return string(b), nil
	},
		tool.Name(ServicesName),
		tool.Description("Finds event services such as venues, caterers or entertainers near a location using web search. "+
			"Returns a JSON list of {name, url, description}; look for phone numbers in the descriptions."),
		tool.InputDescription("service|location, for example 'wedding venue|Austin, TX'"),
	)
}
