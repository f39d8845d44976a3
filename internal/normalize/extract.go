// Package normalize turns whatever text the LLM returned into well-formed
// domain values. Nothing in here returns a partially filled struct: missing
// or mistyped fields are backfilled with safe defaults.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrNoJSON    = errors.New("no JSON value found")
	ErrNotObject = errors.New("JSON value is not an object")
)

// Strategy pulls a JSON candidate out of raw model output.
type Strategy struct {
	Name    string
	Extract func(raw string) (string, bool)
}

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// Strategies are tried in order; the first candidate that decodes wins.
var Strategies = []Strategy{
	{Name: "whole_text", Extract: WholeText},
	{Name: "fenced_block", Extract: FencedBlock},
	{Name: "outer_braces", Extract: OuterBraces},
}

// WholeText treats the entire response as JSON.
func WholeText(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	return s, s != ""
}

// FencedBlock takes the body of the first markdown code fence.
func FencedBlock(raw string) (string, bool) {
	m := fencePattern.FindStringSubmatch(raw)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return "", false
	}
	return m[1], true
}

// OuterBraces takes everything from the first '{' to the last '}', which
// recovers objects wrapped in prose.
func OuterBraces(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// JSONObject runs the strategies and returns the first candidate that decodes.
// A candidate that decodes to something other than an object stops the search
// with ErrNotObject: later strategies would only dig an unrelated fragment
// out of an array or string.
func JSONObject(raw string) (map[string]any, error) {
	for _, strategy := range Strategies {
		candidate, ok := strategy.Extract(raw)
		if !ok {
			continue
		}
		value, err := decode(candidate)
		if err != nil {
			continue
		}
		obj, isObject := value.(map[string]any)
		if !isObject {
			return nil, ErrNotObject
		}
		return obj, nil
	}
	return nil, ErrNoJSON
}

func decode(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// Trailing garbage means the candidate was not a single JSON value.
	if dec.More() {
		return nil, ErrNoJSON
	}
	return v, nil
}
