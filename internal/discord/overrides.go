package discord

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ParseOverrides turns key=value pairs into Overrides. Values that parse as
// JSON keep their JSON type; anything else is taken as a plain string.
// Later pairs win over earlier ones.
func ParseOverrides(pairs []string) (Overrides, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(Overrides, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid override %q: want key=value", p)
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		out[key] = v
	}
	return out, nil
}
