package rest

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"
)

// formLayouts are the timestamp layouts accepted besides RFC 3339, covering
// datetime-local and date inputs. Times without a zone are read as UTC.
var formLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// bodyFields names the keys of a request body that browser forms send as strings.
type bodyFields struct {
	date    string
	numbers []string
}

var (
	teamFields     = bodyFields{}
	scoreFields    = bodyFields{date: "achieved_at", numbers: []string{"team_id", "points"}}
	progressFields = bodyFields{date: "completed_at", numbers: []string{"team_id", "percentage"}}
)

// normalizeBody rewrites a JSON object the way form submissions need it:
// empty strings become null, integer strings in numeric fields become numbers
// and the date field in any accepted layout becomes RFC 3339. Anything else,
// including bodies that are not an object, is left for the decoder to judge.
func normalizeBody(body []byte, fields bodyFields) []byte {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return body
	}

	changed := false
	for key, raw := range obj {
		if len(raw) == 0 || raw[0] != '"' {
			continue
		}
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			continue
		}
		str = strings.TrimSpace(str)

		switch {
		case str == "":
			obj[key] = json.RawMessage("null")
		case slices.Contains(fields.numbers, key):
			n, err := strconv.ParseInt(str, 10, 64)
			if err != nil {
				continue
			}
			obj[key] = json.RawMessage(strconv.FormatInt(n, 10))
		case key == fields.date:
			t, ok := parseFormTime(str)
			if !ok {
				continue
			}
			quoted, err := json.Marshal(t.Format(time.RFC3339Nano))
			if err != nil {
				continue
			}
			obj[key] = quoted
		default:
			continue
		}
		changed = true
	}

	if !changed {
		return body
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return body
	}
	return out
}

func parseFormTime(value string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	for _, layout := range formLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
