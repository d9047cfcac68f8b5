package assay

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a locale-formatted number. dec selects the decimal separator;
// 0 auto-detects between '.' and ','. A trailing '%' and non-breaking spaces are ignored.
func ParseNumber(s string, dec rune) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	if raw == "" {
		return 0, false
	}
	var thou rune
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else {
		raw = strings.ReplaceAll(raw, string(thou), "")
		raw = strings.ReplaceAll(raw, " ", "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// toFloat coerces a raw cell value. Missing values return present=false.
func toFloat(v any, dec rune) (x float64, present, ok bool) {
	switch t := v.(type) {
	case nil:
		return 0, false, false
	case float64:
		return t, true, true
	case float32:
		return float64(t), true, true
	case int:
		return float64(t), true, true
	case int64:
		return float64(t), true, true
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, false, false
		}
		f, ok := ParseNumber(t, dec)
		return f, true, ok
	default:
		return 0, true, false
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
