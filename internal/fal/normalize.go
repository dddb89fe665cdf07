package fal

import (
	"encoding/json"
	"strings"
)

// Response is a normalized upstream reply: the HTTP status plus the decoded
// body. Bodies that are not valid JSON are wrapped as {"raw": <text>} instead
// of being rejected, since upstream shapes are not contractually fixed.
type Response struct {
	Status int
	Data   Value
	Raw    []byte
}

// Normalize builds a Response from a raw upstream status and body. It never
// fails: parse errors are absorbed into the raw-text fallback.
func Normalize(status int, body []byte) Response {
	data, err := ParseValue(body)
	if err != nil {
		data = Value{Kind: KindObject, Members: []Member{
			{Key: "raw", Value: Value{Kind: KindString, Str: string(body)}},
		}}
	}
	return Response{Status: status, Data: data, Raw: append([]byte(nil), body...)}
}

// Payload returns the body as JSON suitable for echoing back to clients,
// applying the same raw-text fallback as Normalize.
func (r Response) Payload() json.RawMessage {
	if len(r.Raw) > 0 && json.Valid(r.Raw) {
		return json.RawMessage(append([]byte(nil), r.Raw...))
	}
	b, _ := json.Marshal(map[string]string{"raw": string(r.Raw)})
	return b
}

// OK reports whether the upstream status is in the success range.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// ErrorMessage picks an upstream-supplied error detail out of a failed
// response, falling back to the raw body text.
func (r Response) ErrorMessage() string {
	for _, key := range []string{"error", "message", "detail"} {
		if s, ok := r.Data.Field(key).StringValue(); ok && s != "" {
			return s
		}
	}
	return strings.TrimSpace(string(r.Raw))
}
