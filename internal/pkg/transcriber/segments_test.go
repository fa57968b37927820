package transcriber

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseSegment(t *testing.T) {
	tests := []struct {
		name string
		line string
		want segment
		ok   bool
	}{
		{name: "dot", line: "[00:00:00.000 --> 00:00:02.400]  labas rytas", ok: true,
			want: segment{start: 0, end: 2400 * time.Millisecond, text: "labas rytas"}},
		{name: "comma", line: "[00:01:00,500 --> 00:01:02,000] olia", ok: true,
			want: segment{start: time.Minute + 500*time.Millisecond, end: time.Minute + 2*time.Second, text: "olia"}},
		{name: "no match", line: "whisper_init_state: compute buffer", ok: false},
		{name: "empty", line: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseSegment(tt.line)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func Test_formatSegments(t *testing.T) {
	sec := func(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }
	tests := []struct {
		name string
		args []segment
		want string
	}{
		{name: "empty", args: nil, want: ""},
		{name: "one", args: []segment{{start: 0, end: sec(1), text: "olia"}}, want: "olia"},
		{name: "same line", args: []segment{
			{start: 0, end: sec(1), text: "one"},
			{start: sec(1.2), end: sec(2), text: "two"}}, want: "one two"},
		{name: "line break", args: []segment{
			{start: 0, end: sec(1), text: "one"},
			{start: sec(2), end: sec(3), text: "two"}}, want: "one\ntwo"},
		{name: "paragraph", args: []segment{
			{start: 0, end: sec(1), text: "one"},
			{start: sec(3), end: sec(4), text: "two"}}, want: "one\n\ntwo"},
		{name: "skips empty", args: []segment{
			{start: 0, end: sec(1), text: "one"},
			{start: sec(1), end: sec(2), text: ""},
			{start: sec(2.1), end: sec(3), text: "two"}}, want: "one two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSegments(tt.args))
		})
	}
}
