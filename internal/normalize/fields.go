package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

func optString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return domain.StringOrNil(s)
}

func stringOr(v any, fallback string) string {
	if s := optString(v); s != nil {
		return *s
	}
	return fallback
}

// optID accepts string or numeric ids; the state API returns both depending
// on the backend.
func optID(v any) *string {
	switch id := v.(type) {
	case string:
		return domain.StringOrNil(id)
	case json.Number:
		s := id.String()
		return &s
	case float64:
		s := strconv.FormatFloat(id, 'f', -1, 64)
		return &s
	}
	return nil
}

func optDate(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return domain.NormalizeDate(s)
}

func optPriority(v any) *domain.PriorityHint {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	p := domain.PriorityHint(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return nil
	}
	return &p
}

func optImportance(v any) *domain.Importance {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	imp := domain.Importance(strings.ToLower(strings.TrimSpace(s)))
	switch imp {
	case domain.ImportanceHigh, domain.ImportanceNormal, domain.ImportanceLow:
		return &imp
	}
	return nil
}

func status(v any) domain.TaskStatus {
	s, ok := v.(string)
	if !ok {
		return domain.TaskStatusOpen
	}
	st := domain.TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return domain.TaskStatusOpen
	}
	return st
}

// optNumber coerces numbers and numeric strings; everything else is nil.
func optNumber(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func isTimestamp(s string) bool {
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}
