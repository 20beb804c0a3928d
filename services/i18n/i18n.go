package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var fs embed.FS

const DefaultLang = "en"

// translations stores flattened keys: "en" -> "errors.error_verify_first" -> "..."
var (
	translations = make(map[string]map[string]string)
	mutex        sync.RWMutex
	loadOnce     sync.Once
	loadErr      error
)

// Load reads every embedded <lang>.json. It is safe to call more than once.
func Load() error {
	loadOnce.Do(func() {
		loadErr = load()
	})
	return loadErr
}

func load() error {
	mutex.Lock()
	defer mutex.Unlock()

	entries, err := fs.ReadDir(".")
	if err != nil {
		return fmt.Errorf("failed to read embedded locales: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")
		content, err := fs.ReadFile(entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}

		var result map[string]interface{}
		if err := json.Unmarshal(content, &result); err != nil {
			return fmt.Errorf("failed to unmarshal locale %s: %w", entry.Name(), err)
		}

		flat := make(map[string]string)
		flatten("", result, flat)
		translations[lang] = flat
		log.Printf("Loaded locale: %s (%d keys)", lang, len(flat))
	}

	return nil
}

// flatten recursively flattens a nested map into dot-notation keys
func flatten(prefix string, nested map[string]interface{}, result map[string]string) {
	for k, v := range nested {
		newKey := k
		if prefix != "" {
			newKey = prefix + "." + k
		}

		switch child := v.(type) {
		case map[string]interface{}:
			flatten(newKey, child, result)
		case string:
			result[newKey] = child
		default:
			result[newKey] = fmt.Sprintf("%v", child)
		}
	}
}

// Supported lists the loaded languages in sorted order
func Supported() []string {
	Load()
	mutex.RLock()
	defer mutex.RUnlock()

	langs := make([]string, 0, len(translations))
	for lang := range translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// IsSupported reports whether a locale file exists for lang
func IsSupported(lang string) bool {
	Load()
	mutex.RLock()
	defer mutex.RUnlock()
	_, ok := translations[lang]
	return ok
}

// T translates key using the locale stored in ctx
func T(ctx context.Context, key string, args ...map[string]interface{}) string {
	return Translate(GetLocale(ctx), key, args...)
}

// Translate falls back from lang to DefaultLang and finally to the key itself.
// {name} placeholders are replaced from args[0].
func Translate(lang, key string, args ...map[string]interface{}) string {
	Load()
	mutex.RLock()
	defer mutex.RUnlock()

	if trans, ok := translations[lang]; ok {
		if val, ok := trans[key]; ok {
			return format(val, args...)
		}
	}

	if lang != DefaultLang {
		if trans, ok := translations[DefaultLang]; ok {
			if val, ok := trans[key]; ok {
				return format(val, args...)
			}
		}
	}

	return key
}

// format replaces {var} placeholders with values from args if present
func format(text string, args ...map[string]interface{}) string {
	if len(args) == 0 {
		return text
	}
	for k, v := range args[0] {
		text = strings.ReplaceAll(text, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return text
}

type contextKey string

const LocaleContextKey contextKey = "locale"

// WithLocale returns a context carrying lang
func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, LocaleContextKey, lang)
}

// GetLocale extracts the locale set by the locale middleware, defaulting to "en"
func GetLocale(ctx context.Context) string {
	if val, ok := ctx.Value(LocaleContextKey).(string); ok && val != "" {
		return val
	}
	return DefaultLang
}
