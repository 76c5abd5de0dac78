package export

import (
	"github.com/kailas-cloud/pagex/internal/domain/extraction"
)

// Row is one flattened field of one page.
type Row struct {
	Document string `parquet:"document"`
	Page     int64  `parquet:"page"`
	Key      string `parquet:"key"`
	Kind     string `parquet:"kind"`
	Field    string `parquet:"field"`
	Value    string `parquet:"value"`
}

// Flatten emits one row per structured field and one row per raw page, in order.
func Flatten(docs []*extraction.DocumentResult) ([]Row, error) {
	var rows []Row
	for _, d := range docs {
		for _, e := range d.Entries() {
			base := Row{
				Document: d.Name(),
				Page:     int64(e.Record.Index()),
				Key:      e.Record.Key(),
				Kind:     string(e.Result.Kind()),
			}
			if raw, ok := e.Result.Raw(); ok {
				base.Value = raw
				rows = append(rows, base)
				continue
			}
			for _, k := range e.Result.Keys() {
				v, _ := e.Result.Lookup(k)
				s, err := cellValue(v)
				if err != nil {
					return nil, err
				}
				r := base
				r.Field = k
				r.Value = s
				rows = append(rows, r)
			}
		}
	}
	return rows, nil
}

// cellValue renders strings verbatim and anything else as compact JSON.
func cellValue(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := extraction.MarshalValue(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
