package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// TruncationMarker is appended to values cut by SafeTruncate
const TruncationMarker = "...(truncated)"

// SafeTruncate bounds s to limit characters. A non-positive limit yields "".
func SafeTruncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + TruncationMarker
}

// SafeJSON renders v as JSON for log lines and never fails. Values that
// cannot be encoded fall back to their default fmt form.
//
// Separators are ", " and ": " so lines read the same as the payload dumps
// operators already search for (raw={"memory": []}).
func SafeJSON(v interface{}) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprint(v)
		}
	}()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return string(spaceSeparators(bytes.TrimRight(buf.Bytes(), "\n")))
}

// spaceSeparators adds a space after every ',' and ':' outside string literals
// of compact JSON.
func spaceSeparators(compact []byte) []byte {
	out := make([]byte, 0, len(compact)+len(compact)/8)
	inString := false
	escaped := false
	for _, c := range compact {
		out = append(out, c)
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
		case ',', ':':
			out = append(out, ' ')
		}
	}
	return out
}
