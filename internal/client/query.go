package client

import (
	"net/url"
	"strconv"
)

// PageParams selects one page of a paginated list
type PageParams struct {
	Page     int
	PageSize int
}

// Apply adds the non-zero page parameters to q
func (p PageParams) Apply(q url.Values) {
	SetInt(q, "page", p.Page)
	SetInt(q, "page_size", p.PageSize)
}

// SetInt sets key when v is positive
func SetInt(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

// SetIntPtr sets key when v is not nil, zero included
func SetIntPtr(q url.Values, key string, v *int) {
	if v != nil {
		q.Set(key, strconv.Itoa(*v))
	}
}

// SetString sets key when v is not empty
func SetString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

// Ack is the body of action endpoints such as cancel or use
type Ack struct {
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}

// Text returns whichever message the backend filled in
func (a Ack) Text() string {
	if a.Detail != "" {
		return a.Detail
	}
	return a.Message
}
