package log

import "strings"

// sensitiveKeyNames are matched case-insensitively against "key=value" or
// "key: value" tokens in log output that might echo caller-supplied
// strings (dev-log forwarding, CLI argument echoing). Plain name matching
// is enough here; it does not need a dedicated token-map scrubber like the
// heavier redact packages elsewhere in the ecosystem.
var sensitiveKeyNames = []string{"key", "token", "password", "secret"}

// RedactLine scans line for "name=value" or "name: value" pairs whose name
// matches one of the sensitive key names and replaces the value with
// "***". Anything that is not a recognized key=value pair is left intact,
// so this is a best-effort scrub, not a guarantee.
func RedactLine(line string) string {
	fields := strings.Fields(line)
	for i, field := range fields {
		sep := strings.IndexAny(field, "=:")
		if sep <= 0 {
			continue
		}
		name := strings.ToLower(field[:sep])
		if !isSensitiveKeyName(name) {
			continue
		}
		if sep == len(field)-1 && i+1 < len(fields) {
			// "name: value" form: the value is the next field.
			fields[i+1] = "***"
		} else {
			fields[i] = field[:sep+1] + "***"
		}
	}
	return strings.Join(fields, " ")
}

func isSensitiveKeyName(name string) bool {
	for _, candidate := range sensitiveKeyNames {
		if name == candidate {
			return true
		}
	}
	return false
}
