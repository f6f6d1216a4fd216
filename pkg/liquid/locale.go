package liquid

import (
	"embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/en.yml
var localeFS embed.FS

// Locale is a catalog of error messages keyed by dotted path
// (e.g. "errors.syntax.unknown_tag"). Messages interpolate %{name} placeholders.
type Locale struct {
	messages map[string]string
}

var defaultLocale = mustLoadDefaultLocale()

func mustLoadDefaultLocale() *Locale {
	f, err := localeFS.Open("locales/en.yml")
	if err != nil {
		panic(fmt.Sprintf("liquid: opening embedded locale: %v", err))
	}
	defer f.Close()
	l, err := LoadLocale(f)
	if err != nil {
		panic(fmt.Sprintf("liquid: decoding embedded locale: %v", err))
	}
	return l
}

// DefaultLocale returns the built-in English catalog.
func DefaultLocale() *Locale { return defaultLocale }

// LoadLocale decodes a YAML message catalog.
func LoadLocale(r io.Reader) (*Locale, error) {
	var tree map[string]any
	if err := yaml.NewDecoder(r).Decode(&tree); err != nil {
		return nil, fmt.Errorf("decoding locale: %w", err)
	}
	l := &Locale{messages: map[string]string{}}
	flattenLocale("", tree, l.messages)
	return l, nil
}

func flattenLocale(prefix string, tree map[string]any, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]any:
			flattenLocale(key, t, out)
		case string:
			out[key] = t
		default:
			out[key] = fmt.Sprint(t)
		}
	}
}

// Merge overlays other on top of l and returns the result; l is not modified.
func (l *Locale) Merge(other *Locale) *Locale {
	merged := &Locale{messages: make(map[string]string, len(l.messages))}
	for k, v := range l.messages {
		merged.messages[k] = v
	}
	if other != nil {
		for k, v := range other.messages {
			merged.messages[k] = v
		}
	}
	return merged
}

// T translates key, substituting %{name} with the matching value from the
// name/value pairs in vars. Unknown keys translate to the key itself.
func (l *Locale) T(key string, vars ...string) string {
	msg, ok := l.messages[key]
	if !ok {
		if l != defaultLocale {
			return defaultLocale.T(key, vars...)
		}
		msg = key
	}
	if len(vars) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(vars))
	for i := 0; i+1 < len(vars); i += 2 {
		pairs = append(pairs, "%{"+vars[i]+"}", vars[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
