// Package it contains the integration harness and smoke tests: a real
// leader and follower set served over loopback HTTP, exercised through the
// same client surface external callers use.
package it

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlexandraB-C/PR-LAB-4/internal/config"
	"github.com/AlexandraB-C/PR-LAB-4/internal/node"
)

// TestNode is one in-process node served over loopback HTTP.
type TestNode struct {
	Node *node.Node
	URL  string

	ts *httptest.Server
}

// Stop makes the node unreachable, simulating a crashed or partitioned
// follower. The leader keeps its URL in the fan-out set.
func (n *TestNode) Stop() {
	n.ts.Close()
}

// Cluster is an in-process cluster: one leader plus a fixed follower set.
type Cluster struct {
	Leader    *TestNode
	Followers []*TestNode
}

// StartCluster starts followerCount followers and one leader configured
// with the given write quorum. All nodes run without simulated delay.
func StartCluster(t *testing.T, followerCount, writeQuorum int) *Cluster {
	t.Helper()

	c := &Cluster{}
	followerURLs := make([]string, 0, followerCount)
	for i := 0; i < followerCount; i++ {
		tn := startNode(t, func(cfg *config.Config) {})
		c.Followers = append(c.Followers, tn)
		followerURLs = append(followerURLs, tn.URL)
	}

	c.Leader = startNode(t, func(cfg *config.Config) {
		cfg.Role = "leader"
		cfg.FollowerURLs = followerURLs
		cfg.WriteQuorum = writeQuorum
	})

	return c
}

func startNode(t *testing.T, mutate func(*config.Config)) *TestNode {
	t.Helper()

	cfg := config.Default()
	cfg.MinDelayMs = 0
	cfg.MaxDelayMs = 0
	cfg.ReplicationTimeoutMs = 1000
	mutate(&cfg)

	n, err := node.New(cfg)
	if err != nil {
		t.Fatalf("failed to build node: %v", err)
	}

	ts := httptest.NewServer(node.NewServer(n, "").Handler())
	t.Cleanup(ts.Close)

	return &TestNode{Node: n, URL: ts.URL, ts: ts}
}

// Response is a decoded JSON reply plus its HTTP status.
type Response struct {
	Status int
	Body   map[string]any
}

// Put writes a key through a node's HTTP API.
func Put(t *testing.T, baseURL, key, value string) Response {
	t.Helper()
	return do(t, http.MethodPut, fmt.Sprintf("%s/kv/%s", baseURL, key),
		map[string]any{"value": value})
}

// Get reads a key through a node's HTTP API.
func Get(t *testing.T, baseURL, key string) Response {
	t.Helper()
	return do(t, http.MethodGet, fmt.Sprintf("%s/kv/%s", baseURL, key), nil)
}

// Delete removes a key through a node's HTTP API.
func Delete(t *testing.T, baseURL, key string) Response {
	t.Helper()
	return do(t, http.MethodDelete, fmt.Sprintf("%s/kv/%s", baseURL, key), nil)
}

// Status fetches a node's status report.
func Status(t *testing.T, baseURL string) Response {
	t.Helper()
	return do(t, http.MethodGet, baseURL+"/status", nil)
}

func do(t *testing.T, method, url string, body any) Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode %s %s response: %v", method, url, err)
	}

	return Response{Status: resp.StatusCode, Body: decoded}
}
