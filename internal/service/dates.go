package service

import (
	"fmt"
	"strings"
	"time"

	"pizzapos/internal/apperr"
)

const dateOnly = "2006-01-02"

// parseRange reads optional inclusive bounds. A date-only upper bound covers
// the whole of that day in the service location.
func (s *Service) parseRange(rawFrom string, rawTo string) (*time.Time, *time.Time, error) {
	from, err := s.parseBound("fechaInicio", rawFrom, false)
	if err != nil {
		return nil, nil, err
	}
	to, err := s.parseBound("fechaFin", rawTo, true)
	if err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, apperr.Validation("fechaInicio must not be after fechaFin")
	}
	return from, to, nil
}

func (s *Service) parseBound(field string, raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateOnly, raw, s.loc)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("%s must be a date (YYYY-MM-DD) or an RFC 3339 timestamp", field))
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
