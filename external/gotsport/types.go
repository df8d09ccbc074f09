package gotsport

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/internal/usecase"
)

// StatusError reports a non-2xx upstream response. Callers reach the
// code through StatusCode regardless of how many times the error has
// been wrapped since.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status=%d body=%s", e.Code, e.Body)
}

// HTTPStatus exposes the code to the scrape error log.
func (e *StatusError) HTTPStatus() int { return e.Code }

// StatusCode extracts the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var statusErr *StatusError
	if crerr.As(err, &statusErr) {
		return statusErr.Code, true
	}
	return 0, false
}

// decodeListPayload accepts a bare JSON array or an object wrapping the
// array under one of envelopeKeys, in document order of preference.
func decodeListPayload(raw []byte, envelopeKeys ...string) ([]map[string]any, error) {
	var node any
	if err := sonic.Unmarshal(raw, &node); err != nil {
		return nil, crerr.Wrap(err, "decode payload")
	}

	switch typed := node.(type) {
	case []any:
		return collectRows(typed), nil
	case map[string]any:
		for _, key := range envelopeKeys {
			child, ok := typed[key]
			if !ok {
				continue
			}
			items, ok := child.([]any)
			if !ok {
				return nil, crerr.Newf("payload key %q is not an array", key)
			}
			return collectRows(items), nil
		}
		return nil, crerr.Newf("payload object carries none of %v", envelopeKeys)
	default:
		return nil, crerr.Newf("unexpected payload type %T", node)
	}
}

func collectRows(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, row)
	}
	return out
}

func mapRosterEntry(item map[string]any) usecase.ExternalRosterEntry {
	return usecase.ExternalRosterEntry{
		Name:       getStringAny(item, "team_name", "name"),
		ExternalID: numberOrString(item, "team_id", "id"),
		Club:       getStringAny(item, "club", "club_name"),
		State:      getStringAny(item, "state", "team_association"),
	}
}

func mapRawMatch(item map[string]any, sourceURL string) usecase.ExternalMatch {
	return usecase.ExternalMatch{
		Date:          getStringAny(item, "date", "match_date", "played_on"),
		Opponent:      getStringAny(item, "opponent", "opponent_name"),
		TeamScore:     numberOrString(item, "team_score", "goals_for", "score_for"),
		OpponentScore: numberOrString(item, "opponent_score", "goals_against", "score_against"),
		Competition:   getStringAny(item, "competition", "event", "event_name"),
		HomeAway:      getStringAny(item, "home_away", "venue"),
		SourceURL:     sourceURL,
	}
}

func mapSearchResult(item map[string]any) usecase.ExternalSearchHit {
	return usecase.ExternalSearchHit{
		Name:       getStringAny(item, "name", "team_name"),
		ExternalID: numberOrString(item, "id", "team_id"),
	}
}

func getStringAny(src map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := src[key].(string)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// numberOrString renders the first present key as text. Upstream feeds
// flip between numeric and string ids and scores across seasons.
func numberOrString(src map[string]any, keys ...string) string {
	for _, key := range keys {
		raw, ok := src[key]
		if !ok || raw == nil {
			continue
		}
		switch value := raw.(type) {
		case string:
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		case float64:
			if value == math.Trunc(value) {
				return strconv.FormatInt(int64(value), 10)
			}
			return strconv.FormatFloat(value, 'f', -1, 64)
		}
	}
	return ""
}
