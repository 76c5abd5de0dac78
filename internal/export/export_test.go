package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"

	"github.com/kailas-cloud/pagex/internal/domain/extraction"
)

func sampleDocs(t *testing.T) []*extraction.DocumentResult {
	t.Helper()
	doc := extraction.NewDocumentResult("東京大学", 2)
	structured := extraction.NewOrdered(
		[]string{"タイトル", "学生数", "比率"},
		map[string]any{"タイトル": "概要", "学生数": "1200", "比率": json.Number("0.5")},
	)
	if err := doc.Add(extraction.NewPageRecord(0, "概要"), structured); err != nil {
		t.Fatalf("add: %v", err)
	}
	raw := extraction.NewRaw("no data available")
	if err := doc.Add(extraction.NewPageRecord(1, "Could not parse ai response as JSON"), raw); err != nil {
		t.Fatalf("add: %v", err)
	}
	return []*extraction.DocumentResult{doc}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"xlsx", FormatXLSX, false},
		{"parquet", FormatParquet, false},
		{"csv", "", true},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New("yaml", Options{})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestJSON_Write(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSON(Options{}).Write(&buf, sampleDocs(t)); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := `[
    {
        "university": "東京大学",
        "factbookData": {
            "0 - 概要": {
                "タイトル": "概要",
                "学生数": "1200",
                "比率": 0.5
            },
            "1 - Could not parse ai response as JSON": "no data available"
        }
    }
]
`
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestJSON_CustomFieldsAndNoEscape(t *testing.T) {
	doc := extraction.NewDocumentResult("A&B <Univ>", 1)
	if err := doc.Add(extraction.NewPageRecord(0, "t"), extraction.NewRaw("x < y")); err != nil {
		t.Fatalf("add: %v", err)
	}

	var buf bytes.Buffer
	w := NewJSON(Options{NameField: "name", PagesField: "pages", Indent: 2})
	if err := w.Write(&buf, []*extraction.DocumentResult{doc}); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := "[\n  {\n    \"name\": \"A&B <Univ>\",\n    \"pages\": {\n      \"0 - t\": \"x < y\"\n    }\n  }\n]\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSON(Options{}).Write(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "[]\n" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

func TestFlatten(t *testing.T) {
	rows, err := Flatten(sampleDocs(t))
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	if rows[0].Field != "タイトル" || rows[0].Value != "概要" || rows[0].Kind != "structured" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[2].Value != "0.5" {
		t.Errorf("expected number lexical form, got %q", rows[2].Value)
	}
	last := rows[3]
	if last.Page != 1 || last.Kind != "raw" || last.Field != "" || last.Value != "no data available" {
		t.Errorf("unexpected raw row: %+v", last)
	}
	if last.Key != "1 - Could not parse ai response as JSON" {
		t.Errorf("unexpected key %q", last.Key)
	}
}

func TestXLSX_Write(t *testing.T) {
	var buf bytes.Buffer
	if err := NewXLSX().Write(&buf, sampleDocs(t)); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("expected single sheet %q, got %v", SheetName, sheets)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "Document" || rows[0][5] != "Value" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "東京大学" || rows[1][1] != "0" || rows[1][4] != "タイトル" {
		t.Errorf("unexpected row: %v", rows[1])
	}
}

func TestParquet_Write(t *testing.T) {
	var buf bytes.Buffer
	if err := NewParquet().Write(&buf, sampleDocs(t)); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := parquet.Read[Row](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want, _ := Flatten(sampleDocs(t))
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i := range rows {
		if rows[i] != want[i] {
			t.Errorf("rows[%d] = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.json")
	w, err := New("json", Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := WriteFile(path, w, sampleDocs(t)); err != nil {
		t.Fatalf("write file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if decoded[0]["university"] != "東京大学" {
		t.Errorf("unexpected name: %v", decoded[0]["university"])
	}
}
