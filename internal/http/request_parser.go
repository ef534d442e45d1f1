package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads and decodes a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body", core.ErrInvalidInput)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", core.ErrInvalidInput)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		// Field-level errors (bad date, bad amount) keep their own
		// sentinel; structural errors collapse to one message.
		if isValidationError(err) {
			return err
		}
		return fmt.Errorf("%w: malformed JSON body", core.ErrInvalidInput)
	}
	return nil
}

// decimalString accepts an amount as either a JSON string or a number,
// preserving the exact decimal text for cent parsing.
type decimalString string

func (d *decimalString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return core.ErrInvalidAmount
		}
		*d = decimalString(v)
		return nil
	}
	*d = decimalString(s)
	return nil
}

// parseListQuery extracts userId plus the frequency/range/type selection
// from query parameters. frequency defaults to 30 days; "custom" switches
// to the explicit startDate/endDate pair (format 2006-01-02).
func parseListQuery(r *http.Request) (string, services.Query, error) {
	values := r.URL.Query()

	userID := strings.TrimSpace(values.Get("userId"))
	if userID == "" {
		return "", services.Query{}, fmt.Errorf("%w: missing userId", core.ErrInvalidInput)
	}

	q := services.Query{}

	switch freq := strings.TrimSpace(values.Get("frequency")); freq {
	case "", "30":
		q.FrequencyDays = 30
	case "7":
		q.FrequencyDays = 7
	case "365":
		q.FrequencyDays = 365
	case "custom":
		from, err := parseDateParam(values.Get("startDate"))
		if err != nil {
			return "", services.Query{}, err
		}
		to, err := parseDateParam(values.Get("endDate"))
		if err != nil {
			return "", services.Query{}, err
		}
		q.From, q.To = from, to
	default:
		return "", services.Query{}, services.ErrInvalidFrequency
	}

	switch typ := strings.TrimSpace(values.Get("type")); typ {
	case "", "all":
	case string(core.Credit):
		q.Type = core.Credit
	case string(core.Expense):
		q.Type = core.Expense
	default:
		return "", services.Query{}, core.ErrInvalidType
	}

	return userID, q, nil
}

func parseDateParam(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, v)
	}
	return t, nil
}

// sanitizeInput trims whitespace and strips control characters except
// tab, newline, and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
