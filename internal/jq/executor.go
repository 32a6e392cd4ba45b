// Package jq compiles and runs jq programs over decoded response data.
package jq

import (
	"context"
	"fmt"
	"time"

	"github.com/itchyny/gojq"
)

const (
	// DefaultTimeout bounds a single program run.
	DefaultTimeout = 1 * time.Second

	// DefaultMaxResults bounds how many values a program may emit.
	DefaultMaxResults = 10000
)

// Program is a compiled jq expression, safe for concurrent use.
type Program struct {
	source     string
	code       *gojq.Code
	timeout    time.Duration
	maxResults int
}

// Compile parses and compiles expression. Zero limits use the defaults.
func Compile(expression string, timeout time.Duration, maxResults int) (*Program, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}

	return &Program{
		source:     expression,
		code:       code,
		timeout:    timeout,
		maxResults: maxResults,
	}, nil
}

// String returns the source expression.
func (p *Program) String() string { return p.source }

// Run evaluates the program against data. No output yields nil, a single
// output is returned as-is and several are returned as a slice.
//
// data must be made of JSON-decoded values (maps, slices, strings,
// float64, bool, nil).
func (p *Program) Run(ctx context.Context, data any) (any, error) {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	iter := p.code.RunWithContext(runCtx, data)

	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if runCtx.Err() != nil {
				return nil, fmt.Errorf("execution timeout after %v", p.timeout)
			}
			return nil, err
		}
		if len(results) == p.maxResults {
			return nil, fmt.Errorf("program emitted more than %d results", p.maxResults)
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}
