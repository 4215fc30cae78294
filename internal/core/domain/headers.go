package domain

import "sort"

// Headers is a multi-valued header collection keyed by exact name.
// Unlike http.Header, names are not canonicalized: the projected name is
// whatever the response metadata declared.
type Headers struct {
	headerMap map[string][]string
}

// NewHeaders creates an empty header collection.
func NewHeaders() *Headers {
	return &Headers{headerMap: make(map[string][]string)}
}

// AddHeader appends values under name, keeping order and duplicates.
func (h *Headers) AddHeader(name string, values ...string) *Headers {
	if len(values) == 0 {
		return h
	}
	if h.headerMap == nil {
		h.headerMap = make(map[string][]string)
	}
	h.headerMap[name] = append(h.headerMap[name], values...)
	return h
}

// Header returns all values stored under name, or nil.
func (h *Headers) Header(name string) []string {
	if h == nil {
		return nil
	}
	return h.headerMap[name]
}

// First returns the first value stored under name, or "".
func (h *Headers) First(name string) string {
	values := h.Header(name)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// HeaderMap returns the underlying map. Callers must not modify it.
func (h *Headers) HeaderMap() map[string][]string {
	if h == nil {
		return nil
	}
	return h.headerMap
}

// Names returns the stored header names in sorted order.
func (h *Headers) Names() []string {
	if h == nil {
		return nil
	}
	names := make([]string, 0, len(h.headerMap))
	for name := range h.headerMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of distinct header names.
func (h *Headers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.headerMap)
}
