// Package search provides the web search tools the assistant uses to find venues and
// services: DuckDuckGo instant answers and You.com web results.
package search
