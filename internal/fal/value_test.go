package fal

import "testing"

func TestParseValuePreservesMemberOrder(t *testing.T) {
	v, err := ParseValue([]byte(`{"c":1,"a":2,"b":3}`))
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	if v.Kind != KindObject || len(v.Members) != 3 {
		t.Fatalf("expected object with 3 members, got %+v", v)
	}
	for i, want := range []string{"c", "a", "b"} {
		if v.Members[i].Key != want {
			t.Fatalf("member %d = %q, want %q (document order lost)", i, v.Members[i].Key, want)
		}
	}
}

func TestParseValueRejectsMalformedInput(t *testing.T) {
	for _, body := range []string{"", "{", `{"a":}`, `[1,2`, `{"a":1} trailing`} {
		if _, err := ParseValue([]byte(body)); err == nil {
			t.Fatalf("ParseValue(%q): expected error", body)
		}
	}
}

func TestFieldIsNilSafe(t *testing.T) {
	var v *Value
	if got := v.Field("a").Field("b"); got != nil {
		t.Fatalf("chained Field on nil = %+v, want nil", got)
	}
	if s, ok := v.StringValue(); ok || s != "" {
		t.Fatalf("StringValue on nil = %q, %v", s, ok)
	}
}
