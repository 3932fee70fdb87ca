package clusterapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Bool returns a pointer to v, for optional boolean parameters.
func Bool(v bool) *bool {
	return &v
}

// NodesInfoParams are the parameters of NodesInfo.
type NodesInfoParams struct {
	// NodeID limits the call to a set of nodes. Empty means all nodes.
	NodeID []string

	// Metric limits the returned information sections
	Metric []string

	// FlatSettings returns settings in flat format when set
	FlatSettings *bool

	// Timeout is the remote operation timeout
	Timeout time.Duration
}

// NodesInfo returns information about the cluster's nodes.
// GET /_nodes/{node_id}/{metric}
func (c *Client) NodesInfo(ctx context.Context, params NodesInfoParams) (json.RawMessage, error) {
	path := "/_nodes"
	if len(params.NodeID) > 0 {
		path += "/" + url.PathEscape(strings.Join(params.NodeID, ","))
	}
	if len(params.Metric) > 0 {
		path += "/" + url.PathEscape(strings.Join(params.Metric, ","))
	}

	query := url.Values{}
	if params.FlatSettings != nil {
		query.Set("flat_settings", strconv.FormatBool(*params.FlatSettings))
	}
	if params.Timeout > 0 {
		query.Set("timeout", formatDuration(params.Timeout))
	}

	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

// NodesStatsParams are the parameters of NodesStats.
type NodesStatsParams struct {
	// NodeID limits the call to a set of nodes. Empty means all nodes.
	NodeID []string

	// Metric limits the returned statistic sections
	Metric []string

	// IndexMetric limits the returned index statistic sections, applies
	// only when Metric includes "indices"
	IndexMetric []string

	// Level aggregates statistics at node, indices or shards level
	Level string

	// Groups is a list of search groups to include in search statistics
	Groups []string

	// Types is a list of document types for indexing statistics
	Types []string

	// IncludeSegmentFileSizes reports aggregated disk usage of each
	// segment file when set
	IncludeSegmentFileSizes *bool

	// Timeout is the remote operation timeout
	Timeout time.Duration
}

// NodesStats returns statistics about the cluster's nodes.
// GET /_nodes/{node_id}/stats/{metric}/{index_metric}
func (c *Client) NodesStats(ctx context.Context, params NodesStatsParams) (json.RawMessage, error) {
	path := "/_nodes"
	if len(params.NodeID) > 0 {
		path += "/" + url.PathEscape(strings.Join(params.NodeID, ","))
	}
	path += "/stats"
	if len(params.Metric) > 0 {
		path += "/" + url.PathEscape(strings.Join(params.Metric, ","))
		if len(params.IndexMetric) > 0 {
			path += "/" + url.PathEscape(strings.Join(params.IndexMetric, ","))
		}
	}

	query := url.Values{}
	if params.Level != "" {
		query.Set("level", params.Level)
	}
	if len(params.Groups) > 0 {
		query.Set("groups", strings.Join(params.Groups, ","))
	}
	if len(params.Types) > 0 {
		query.Set("types", strings.Join(params.Types, ","))
	}
	if params.IncludeSegmentFileSizes != nil {
		query.Set("include_segment_file_sizes", strconv.FormatBool(*params.IncludeSegmentFileSizes))
	}
	if params.Timeout > 0 {
		query.Set("timeout", formatDuration(params.Timeout))
	}

	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

// HotThreadsParams are the parameters of NodesHotThreads.
type HotThreadsParams struct {
	// NodeID limits the call to a set of nodes. Empty means all nodes.
	NodeID []string

	// Threads is the number of hottest threads to report
	Threads int

	// Interval is the sampling interval
	Interval time.Duration

	// Snapshots is the number of stack trace samples
	Snapshots int

	// Type selects the thread state to sample (cpu, wait, block)
	Type string

	// IgnoreIdleThreads filters out known idle threads when set
	IgnoreIdleThreads *bool

	// Timeout is the remote operation timeout
	Timeout time.Duration
}

// NodesHotThreads returns the hot threads report of the cluster's nodes.
// The response is plain text, returned as-is.
// GET /_nodes/{node_id}/hot_threads
func (c *Client) NodesHotThreads(ctx context.Context, params HotThreadsParams) (string, error) {
	path := "/_nodes"
	if len(params.NodeID) > 0 {
		path += "/" + url.PathEscape(strings.Join(params.NodeID, ","))
	}
	path += "/hot_threads"

	query := url.Values{}
	if params.Threads > 0 {
		query.Set("threads", strconv.Itoa(params.Threads))
	}
	if params.Interval > 0 {
		query.Set("interval", formatDuration(params.Interval))
	}
	if params.Snapshots > 0 {
		query.Set("snapshots", strconv.Itoa(params.Snapshots))
	}
	if params.Type != "" {
		query.Set("type", params.Type)
	}
	if params.IgnoreIdleThreads != nil {
		query.Set("ignore_idle_threads", strconv.FormatBool(*params.IgnoreIdleThreads))
	}
	if params.Timeout > 0 {
		query.Set("timeout", formatDuration(params.Timeout))
	}

	b, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReloadSecureSettingsParams are the parameters of ReloadSecureSettings.
type ReloadSecureSettingsParams struct {
	// NodeID limits the call to a set of nodes. Empty means all nodes.
	NodeID []string

	// SecureSettingsPassword is the password of the keystore, sent in the
	// request body
	SecureSettingsPassword string

	// Timeout is the remote operation timeout
	Timeout time.Duration
}

// ReloadSecureSettings reloads the keystore-backed secure settings on the
// cluster's nodes.
// POST /_nodes/{node_id}/reload_secure_settings
func (c *Client) ReloadSecureSettings(ctx context.Context, params ReloadSecureSettingsParams) (json.RawMessage, error) {
	path := "/_nodes"
	if len(params.NodeID) > 0 {
		path += "/" + url.PathEscape(strings.Join(params.NodeID, ","))
	}
	path += "/reload_secure_settings"

	query := url.Values{}
	if params.Timeout > 0 {
		query.Set("timeout", formatDuration(params.Timeout))
	}

	var body *bytes.Reader
	contentType := ""
	if params.SecureSettingsPassword != "" {
		payload, err := json.Marshal(map[string]string{
			"secure_settings_password": params.SecureSettingsPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("could not marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	if body == nil {
		return c.do(ctx, http.MethodPost, path, query, nil, "")
	}
	return c.do(ctx, http.MethodPost, path, query, body, contentType)
}

// formatDuration renders a timeout in the compact unit form the remote API
// expects ("30s", "500ms").
func formatDuration(d time.Duration) string {
	if d%time.Second == 0 {
		return strconv.FormatInt(int64(d/time.Second), 10) + "s"
	}
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}
