package extraction

import (
	"encoding/json"
	"testing"
)

func TestResult_Structured(t *testing.T) {
	r := NewStructured(map[string]any{"タイトル": "概要", "学生数": "1200"})

	if r.Kind() != KindStructured {
		t.Fatalf("expected %q, got %q", KindStructured, r.Kind())
	}
	if _, ok := r.Raw(); ok {
		t.Error("structured result must not expose raw text")
	}
	fields, ok := r.Fields()
	if !ok || len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %v", fields)
	}
	if v, ok := r.LookupString("タイトル"); !ok || v != "概要" {
		t.Errorf("expected 概要, got %q (present=%v)", v, ok)
	}
}

func TestResult_FieldsReturnsCopy(t *testing.T) {
	r := NewStructured(map[string]any{"a": "1"})
	fields, _ := r.Fields()
	fields["a"] = "changed"

	if v, _ := r.LookupString("a"); v != "1" {
		t.Errorf("result mutated through Fields(): %q", v)
	}
}

func TestResult_Raw(t *testing.T) {
	r := NewRaw("no data available")

	if r.Kind() != KindRaw {
		t.Fatalf("expected %q, got %q", KindRaw, r.Kind())
	}
	text, ok := r.Raw()
	if !ok || text != "no data available" {
		t.Errorf("expected raw text, got %q (ok=%v)", text, ok)
	}
	if _, ok := r.Fields(); ok {
		t.Error("raw result must not expose fields")
	}
	if _, ok := r.Lookup("タイトル"); ok {
		t.Error("lookup on raw result must report absent")
	}
}

func TestResult_ZeroValueIsRaw(t *testing.T) {
	var r Result
	if r.Kind() != KindRaw {
		t.Errorf("expected zero value to be raw, got %q", r.Kind())
	}
}

func TestResult_LookupStringNonText(t *testing.T) {
	r := NewStructured(map[string]any{"title": json.Number("42")})
	if _, ok := r.Lookup("title"); !ok {
		t.Fatal("expected field to be present")
	}
	if _, ok := r.LookupString("title"); ok {
		t.Error("expected non-text value to be rejected")
	}
}

func TestNewOrdered_KeepsOrder(t *testing.T) {
	r := NewOrdered(
		[]string{"z", "a", "missing", "z"},
		map[string]any{"a": "1", "z": "2", "m": "3"},
	)

	keys := r.Keys()
	want := []string{"z", "a", "m"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestResult_MarshalJSON(t *testing.T) {
	r := NewOrdered([]string{"b", "a"}, map[string]any{"a": "1", "b": "日本語"})

	got, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"b":"日本語","a":"1"}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}

	raw, err := json.Marshal(NewRaw("plain"))
	if err != nil {
		t.Fatalf("marshal raw: %v", err)
	}
	if string(raw) != `"plain"` {
		t.Errorf("got %s", raw)
	}
}

func TestPageRecord_Key(t *testing.T) {
	if k := NewPageRecord(0, "概要").Key(); k != "0 - 概要" {
		t.Errorf("unexpected key %q", k)
	}
	if k := NewPageRecord(12, "").Key(); k != "12 - " {
		t.Errorf("unexpected key %q", k)
	}
}

func TestDocumentResult_AddAndGet(t *testing.T) {
	d := NewDocumentResult("東京大学", 2)

	if err := d.Add(NewPageRecord(0, "概要"), NewStructured(map[string]any{"タイトル": "概要"})); err != nil {
		t.Fatalf("add page 0: %v", err)
	}
	if err := d.Add(NewPageRecord(1, "概要"), NewRaw("x")); err != nil {
		t.Fatalf("add page 1: %v", err)
	}

	if d.Len() != 2 {
		t.Fatalf("expected 2 pages, got %d", d.Len())
	}
	keys := d.Keys()
	if keys[0] != "0 - 概要" || keys[1] != "1 - 概要" {
		t.Errorf("unexpected keys %v", keys)
	}
	if r, ok := d.Get("1 - 概要"); !ok || r.Kind() != KindRaw {
		t.Errorf("expected raw result for page 1, got %v (ok=%v)", r.Kind(), ok)
	}
	if _, ok := d.Get("2 - none"); ok {
		t.Error("expected missing key")
	}
}

func TestDocumentResult_DuplicateKey(t *testing.T) {
	d := NewDocumentResult("doc", 1)
	_ = d.Add(NewPageRecord(0, "t"), NewRaw("a"))

	if err := d.Add(NewPageRecord(0, "t"), NewRaw("b")); err == nil {
		t.Fatal("expected duplicate key error")
	}
	if d.Len() != 1 {
		t.Errorf("expected 1 page, got %d", d.Len())
	}
}

func TestDocumentResult_MarshalJSONOrdered(t *testing.T) {
	d := NewDocumentResult("doc", 3)
	for i, title := range []string{"c", "a", "b"} {
		_ = d.Add(NewPageRecord(i, title), NewRaw(title))
	}

	got, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"0 - c":"c","1 - a":"a","2 - b":"b"}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
