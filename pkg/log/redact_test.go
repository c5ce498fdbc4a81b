package log

import "testing"

func TestRedactLineScrubsSensitiveKeys(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"provider=anthropic key=sk-ant-12345", "provider=anthropic key=***"},
		{"token:abc.def.ghi status=ok", "token:*** status=ok"},
		{"hello world", "hello world"},
		{"PASSWORD=hunter2", "PASSWORD=***"},
	}
	for _, c := range cases {
		if got := RedactLine(c.in); got != c.want {
			t.Errorf("RedactLine(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
