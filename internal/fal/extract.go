package fal

import (
	"regexp"
	"strconv"
)

// mediaURLPattern matches URLs ending in a playable container or streaming
// manifest extension, optionally followed by a query string. Nothing beyond
// the pattern is validated: a string that merely looks like a media URL is
// accepted, which keeps the extractor tolerant of shapes we have not seen.
var mediaURLPattern = regexp.MustCompile(`(?i)^https?://\S+\.(?:mp4|webm|mov|mkv|m3u8)(?:\?\S*)?$`)

// resultURLPaths are the known upstream response shapes, checked in order
// before the generic scan. The ordering reflects observed responses and must
// be preserved: when several fields are present, the earlier one wins.
var resultURLPaths = [][]string{
	{"video_url"},
	{"url"},
	{"output", "video_url"},
	{"video", "url"},
	{"data", "video_url"},
	{"data", "url"},
}

// jobIDKeys are the fields an upstream job identifier may arrive under,
// checked directly on the root and then nested under "data".
var jobIDKeys = []string{"request_id", "id", "job_id"}

// ExtractResultURL searches a normalized payload for a playable media URL.
// Known field paths take priority; after that every string leaf is scanned
// with an explicit worklist, so deeply nested payloads cannot blow the stack.
// It returns "" when nothing matches.
func ExtractResultURL(root *Value) string {
	if root == nil || root.Kind == KindNull {
		return ""
	}
	for _, path := range resultURLPaths {
		v := root
		for _, key := range path {
			v = v.Field(key)
		}
		if s, ok := v.StringValue(); ok && mediaURLPattern.MatchString(s) {
			return s
		}
	}
	stack := []*Value{root}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch v.Kind {
		case KindString:
			if mediaURLPattern.MatchString(v.Str) {
				return v.Str
			}
		case KindArray:
			for i := len(v.Items) - 1; i >= 0; i-- {
				stack = append(stack, &v.Items[i])
			}
		case KindObject:
			for i := len(v.Members) - 1; i >= 0; i-- {
				stack = append(stack, &v.Members[i].Value)
			}
		}
	}
	return ""
}

// ExtractJobID looks for an upstream job identifier in the known fields.
// Numeric identifiers are formatted back to their string form.
func ExtractJobID(root *Value) string {
	if root == nil {
		return ""
	}
	for _, key := range jobIDKeys {
		if id := identifier(root.Field(key)); id != "" {
			return id
		}
	}
	if data := root.Field("data"); data != nil {
		for _, key := range jobIDKeys {
			if id := identifier(data.Field(key)); id != "" {
				return id
			}
		}
	}
	return ""
}

func identifier(v *Value) string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return ""
}
