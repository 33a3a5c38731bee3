package normalize

// Payload is one decoded provider response body. Provider JSON is
// duck-shaped, so every field access goes through an accessor that reports
// presence explicitly instead of leaning on zero values.
type Payload map[string]any

func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Float accepts float64 (what encoding/json produces) plus int/int64 so
// hand-built fixtures behave the same as decoded bodies.
func (p Payload) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func (p Payload) Bool(key string) (bool, bool) {
	v, ok := p[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func (p Payload) Map(key string) (Payload, bool) {
	v, ok := p[key]
	if !ok {
		return nil, false
	}
	switch m := v.(type) {
	case map[string]any:
		return Payload(m), true
	case Payload:
		return m, true
	}
	return nil, false
}

func (p Payload) Slice(key string) ([]any, bool) {
	v, ok := p[key]
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

// Maps returns the value at key as a slice of objects, skipping any
// elements that are not objects.
func (p Payload) Maps(key string) ([]Payload, bool) {
	s, ok := p.Slice(key)
	if !ok {
		return nil, false
	}
	out := make([]Payload, 0, len(s))
	for _, v := range s {
		switch m := v.(type) {
		case map[string]any:
			out = append(out, Payload(m))
		case Payload:
			out = append(out, m)
		}
	}
	return out, true
}
