// Package keycodec кодирует составные ключи реестра из упорядоченных частей.
package keycodec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Части ключа экранируются по отдельности до склейки, поэтому разделитель
// внутри части не ломает разбор.
const delimiter = "::"

// ErrMalformedKey возвращается при разборе строки, не являющейся
// корректным составным ключом.
var ErrMalformedKey = errors.New("malformed composite key")

// Encode собирает составной ключ из упорядоченных частей. Ключ состоит
// минимум из одной части: для пустого списка возвращается пустая строка,
// которую Decode отвергает.
func Encode(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = strconv.Quote(part)
	}
	return strings.Join(quoted, delimiter)
}

// Decode восстанавливает исходные части из составного ключа.
// Для непустого списка частей выполняется Decode(Encode(parts)) == parts.
func Decode(key string) ([]string, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrMalformedKey)
	}

	var parts []string
	rest := key
	for {
		quoted, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedKey, key)
		}
		part, err := strconv.Unquote(quoted)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedKey, key)
		}
		parts = append(parts, part)

		rest = rest[len(quoted):]
		if rest == "" {
			return parts, nil
		}
		if !strings.HasPrefix(rest, delimiter) {
			return nil, fmt.Errorf("%w: %q", ErrMalformedKey, key)
		}
		rest = rest[len(delimiter):]
	}
}
