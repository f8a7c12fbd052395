package api

import (
	"encoding/json"
	"time"
)

// FeedItem is one entry of the she feed.
type FeedItem struct {
	ActionCode string       `json:"actionCode" validate:"required"`
	Message    *string      `json:"message,omitempty"`
	Source     string       `json:"source,omitempty"`
	Date       *FeedDate    `json:"date,omitempty"`
	Types      []string     `json:"types,omitempty"`
	Title      *FeedTitle   `json:"title,omitempty"`
	Content    *FeedContent `json:"content,omitempty"`
}

// FeedDate is the feed timestamp in both forms the HAT emits.
type FeedDate struct {
	ISO  string `json:"iso" validate:"required"`
	Unix int64  `json:"unix"`
}

// Time returns the date as time.Time, preferring the unix field.
func (d FeedDate) Time() time.Time {
	if d.Unix != 0 {
		return time.Unix(d.Unix, 0).UTC()
	}
	t, err := time.Parse(time.RFC3339, d.ISO)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

type FeedTitle struct {
	Text     string `json:"text" validate:"required"`
	Subtitle string `json:"subtitle,omitempty"`
	Action   string `json:"action,omitempty"`
}

type FeedContent struct {
	Text string `json:"text,omitempty"`
}

// DataRecord is one record of the HAT data API.
type DataRecord struct {
	Endpoint string          `json:"endpoint" validate:"required"`
	RecordID string          `json:"recordId" validate:"required"`
	Data     json.RawMessage `json:"data"`
}

// Tool is a HAT tool (she function).
type Tool struct {
	ID         string           `json:"id" validate:"required"`
	Info       ToolInfo         `json:"info"`
	Status     ToolStatus       `json:"status"`
	DataBundle *ToolsDataBundle `json:"dataBundle,omitempty"`
}

type ToolInfo struct {
	Name        string `json:"name"`
	Headline    string `json:"headline,omitempty"`
	Description struct {
		Text string `json:"text,omitempty"`
	} `json:"description"`
	Version string `json:"version,omitempty"`
}

type ToolStatus struct {
	Available bool   `json:"available"`
	Enabled   bool   `json:"enabled"`
	LastExec  string `json:"lastExecution,omitempty"`
}

// ToolsDataBundle names the data a tool reads, keyed by bundle entry.
type ToolsDataBundle struct {
	Name   string               `json:"name"`
	Bundle map[string]BundleKey `json:"bundle"`
}

// BundleKey points one bundle entry at a namespace/endpoint.
type BundleKey struct {
	Endpoints []BundleEndpoint `json:"endpoints"`
	OrderBy   string           `json:"orderBy,omitempty"`
	Ordering  string           `json:"ordering,omitempty"`
	Limit     int              `json:"limit,omitempty"`
}

type BundleEndpoint struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

// LogEntry is a client log line sent to the HAT.
type LogEntry struct {
	ActionCode string  `json:"actionCode" validate:"required"`
	Message    *string `json:"message,omitempty"`
}

// FileMeta describes a file registered with the HAT file store.
type FileMeta struct {
	FileID     string   `json:"fileId,omitempty"`
	Name       string   `json:"name"`
	Source     string   `json:"source"`
	Tags       []string `json:"tags,omitempty"`
	Title      string   `json:"title,omitempty"`
	Status     *struct {
		Status string `json:"status"`
		Size   int64  `json:"size,omitempty"`
	} `json:"status,omitempty"`
	ContentURL string `json:"contentUrl,omitempty"`
}

// AccessToken is the body of a successful authentication.
type AccessToken struct {
	AccessToken string `json:"accessToken" validate:"required"`
	UserID      string `json:"userId,omitempty"`
}

// Ack is the {"message": ...} body HAT returns for writes without a resource.
type Ack struct {
	Message string `json:"message,omitempty"`
}
