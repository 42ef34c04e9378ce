package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"20060102",
}

// ParseDate tries the supported layouts, then unix seconds or milliseconds.
// Eight-digit values are read as YYYYMMDD only.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if len(s) < 9 {
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return fromUnix(ts), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// fromUnix accepts seconds or milliseconds.
func fromUnix(ts int64) time.Time {
	if ts > 1e11 {
		return time.UnixMilli(ts).UTC()
	}
	return time.Unix(ts, 0).UTC()
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
