package ratelimit

import (
	"strings"
)

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// Exact paths win over prefixes; among prefixes (paths ending with "/") the
// longest wins. An empty Method matches any method.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Special case: health check endpoint is unlimited
	if path == "/health" && method == "GET" {
		return &EndpointConfig{Path: path, Method: method}
	}

	// Try exact match first
	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.matchesMethod(method) {
			return config
		}
	}

	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if !config.matchesMethod(method) || !strings.HasSuffix(config.Path, "/") {
			continue
		}
		if strings.HasPrefix(path, config.Path) && (best == nil || len(config.Path) > len(best.Path)) {
			best = config
		}
	}
	return best
}

func (c *EndpointConfig) matchesMethod(method string) bool {
	return c.Method == "" || c.Method == method
}

// key identifies the bucket family of the rule. Rules sharing a Group share
// buckets.
func (c *EndpointConfig) key() string {
	if c.Group != "" {
		return "group:" + c.Group
	}
	return c.Method + " " + c.Path
}
