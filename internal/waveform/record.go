package waveform

import (
	"fmt"
	"sort"
	"strings"
)

// Top-level namespaces a field path must start with.
var namespaces = map[string]bool{
	"raw":       true,
	"processed": true,
	"results":   true,
	"metadata":  true,
}

// Record holds all data for one lidar footprint: immutable raw inputs,
// intermediate products, final results, and descriptive metadata, all
// addressed by slash-delimited paths. Fields are write-once.
//
// A record is exclusively owned by one goroutine while mutable; the
// orchestrator never shares a record across workers.
type Record struct {
	shot string

	root  Mapping
	paths map[string]bool

	failed     bool
	failReason string
}

// New creates an empty record for the given shot identifier.
func New(shot string) *Record {
	return &Record{
		shot:  shot,
		root:  Mapping{},
		paths: map[string]bool{},
	}
}

// Shot returns the opaque shot identifier.
func (r *Record) Shot() string { return r.shot }

// splitPath validates a path and returns its segments.
func splitPath(path string) ([]string, error) {
	keys := strings.Split(strings.Trim(path, "/"), "/")
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, k := range keys {
		if k == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	if !namespaces[keys[0]] {
		return nil, fmt.Errorf("%w: %q must start with raw, processed, results or metadata",
			ErrInvalidPath, path)
	}
	return keys, nil
}

// Get returns the value stored at a path. Non-terminal paths resolve to
// the Mapping rooted there.
func (r *Record) Get(path string) (Value, error) {
	keys, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	var cur Value = r.root
	for _, k := range keys {
		m, ok := cur.(Mapping)
		if !ok {
			return nil, FieldNotFoundError{Path: path}
		}
		cur, ok = m[k]
		if !ok {
			return nil, FieldNotFoundError{Path: path}
		}
	}
	return cur, nil
}

// Has reports whether a value exists at the path. Invalid paths are
// considered absent.
func (r *Record) Has(path string) bool {
	_, err := r.Get(path)
	return err == nil
}

// Set writes a value at a path. Writing to an already-populated path,
// or beneath a non-mapping value, fails; fields are never overwritten.
// A Mapping value registers all of its terminal sub-paths.
func (r *Record) Set(path string, v Value) error {
	keys, err := splitPath(path)
	if err != nil {
		return err
	}
	norm := strings.Join(keys, "/")
	if r.paths[norm] {
		return DuplicateFieldError{Path: norm}
	}

	cur := r.root
	for _, k := range keys[:len(keys)-1] {
		next, ok := cur[k]
		if !ok {
			child := Mapping{}
			cur[k] = child
			cur = child
			continue
		}
		child, ok := next.(Mapping)
		if !ok {
			return fmt.Errorf("%w: %q crosses non-mapping field", ErrInvalidPath, path)
		}
		cur = child
	}
	last := keys[len(keys)-1]
	if _, exists := cur[last]; exists {
		return DuplicateFieldError{Path: norm}
	}
	cur[last] = v

	if m, ok := v.(Mapping); ok {
		addTerminalPaths(r.paths, m, norm)
	} else {
		r.paths[norm] = true
	}
	return nil
}

func addTerminalPaths(set map[string]bool, m Mapping, prefix string) {
	for k, v := range m {
		p := prefix + "/" + k
		if child, ok := v.(Mapping); ok {
			addTerminalPaths(set, child, p)
		} else {
			set[p] = true
		}
	}
}

// Paths returns the sorted terminal paths currently populated.
func (r *Record) Paths() []string {
	out := make([]string, 0, len(r.paths))
	for p := range r.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// MarkFailed flags the record as failed with a reason. Only the first
// call takes effect; a failed record stays failed for its lifetime.
func (r *Record) MarkFailed(reason string) {
	if r.failed {
		return
	}
	r.failed = true
	r.failReason = reason
}

// Failed reports whether any processing step failed on this record.
func (r *Record) Failed() bool { return r.failed }

// FailReason returns the reason recorded by the first MarkFailed call.
func (r *Record) FailReason() string { return r.failReason }

func (r *Record) String() string {
	return fmt.Sprintf("Waveform %s", r.shot)
}
