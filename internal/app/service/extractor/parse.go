package extractor

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/billhound/billhound/pkg/types"
)

// parseResult extracts the first JSON object from free-form completion text
// and validates every field. Any violation degrades to a safe per-field
// default; a reply with no usable JSON degrades to not-a-bill.
func parseResult(text string) Result {
	raw, ok := firstJSONObject(text)
	if !ok {
		return notABill()
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return notABill()
	}

	res := notABill()
	res.IsBill = asBool(fields["is_bill"])

	if name, ok := asString(fields["name"]); ok {
		name = strings.TrimSpace(name)
		if name != "" {
			res.Name = &name
		}
	}

	if amount, ok := asFloat(fields["amount"]); ok && amount > 0 {
		amount = math.Round(amount*100) / 100
		res.Amount = &amount
	}

	if day, ok := asInt(fields["due_day"]); ok && day >= 1 && day <= 31 {
		res.DueDay = &day
	}

	if cat, ok := asString(fields["category"]); ok {
		res.Category = types.ParseBillCategory(cat)
	}

	if conf, ok := asInt(fields["confidence"]); ok {
		if conf < 0 {
			conf = 0
		}
		if conf > 100 {
			conf = 100
		}
		res.Confidence = conf
	}

	if ev, ok := asString(fields["amount_evidence"]); ok {
		res.AmountEvidence = strings.TrimSpace(ev)
	}
	if ev, ok := asString(fields["due_date_evidence"]); ok {
		res.DueDateEvidence = strings.TrimSpace(ev)
	}

	return res
}

// firstJSONObject returns the first balanced {...} span, respecting strings
// and escapes, so prose around the object is ignored.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func asBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.Trim(n, "$")), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
