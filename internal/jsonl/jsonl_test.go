package jsonl

import (
	"fmt"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []Record
		wantErrs int
	}{
		{
			name:  "empty document",
			input: "",
			want:  nil,
		},
		{
			name:  "blank lines only",
			input: "\n\n  \n\t\n",
			want:  nil,
		},
		{
			name:  "single object",
			input: `{"id":"gid://shopify/Product/1"}`,
			want:  []Record{{"id": "gid://shopify/Product/1"}},
		},
		{
			name:  "order preserved",
			input: "{\"n\":1}\n{\"n\":2}\n{\"n\":3}",
			want: []Record{
				{"n": float64(1)},
				{"n": float64(2)},
				{"n": float64(3)},
			},
		},
		{
			name:  "blank lines dropped",
			input: "{\"a\":true}\n\n\n{\"b\":false}\n",
			want:  []Record{{"a": true}, {"b": false}},
		},
		{
			name:     "one malformed line among valid lines",
			input:    "{\"n\":1}\n{not json}\n{\"n\":2}",
			want:     []Record{{"n": float64(1)}, {"n": float64(2)}},
			wantErrs: 1,
		},
		{
			name:     "all lines malformed",
			input:    "oops\nalso oops",
			want:     nil,
			wantErrs: 2,
		},
		{
			name:     "valid non-object lines are diagnostics",
			input:    "42\n[1,2]\n{\"n\":1}\n\"text\"",
			want:     []Record{{"n": float64(1)}},
			wantErrs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := Parse([]byte(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() records = %v, want %v", got, tt.want)
			}
			if len(errs) != tt.wantErrs {
				t.Errorf("Parse() diagnostics = %d, want %d (%v)", len(errs), tt.wantErrs, errs)
			}
		})
	}
}

func TestParseLineNumbers(t *testing.T) {
	input := "{\"ok\":1}\n\nbroken\n{\"ok\":2}"
	_, errs := Parse([]byte(input))
	if len(errs) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(errs))
	}
	if errs[0].Line != 3 {
		t.Errorf("diagnostic line = %d, want 3", errs[0].Line)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 5, 50} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			records := make([]Record, 0, n)
			for i := 0; i < n; i++ {
				records = append(records, Record{
					"id":    fmt.Sprintf("gid://shopify/Product/%d", i),
					"title": fmt.Sprintf("Product %d", i),
					"price": float64(i) * 1.5,
				})
			}

			data, err := Marshal(records)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if n == 0 && len(data) != 0 {
				t.Fatalf("Marshal(nil) = %q, want empty document", data)
			}

			got, errs := Parse(data)
			if len(errs) != 0 {
				t.Fatalf("round trip produced diagnostics: %v", errs)
			}
			if len(got) != n {
				t.Fatalf("round trip length = %d, want %d", len(got), n)
			}
			for i := range records {
				if !reflect.DeepEqual(got[i], records[i]) {
					t.Errorf("record %d = %v, want %v", i, got[i], records[i])
				}
			}
		})
	}
}

func TestMarshalNoTrailingDuplication(t *testing.T) {
	records := []Record{{"a": float64(1)}, {"b": float64(2)}}
	data, err := Marshal(records)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := "{\"a\":1}\n{\"b\":2}"
	if string(data) != want {
		t.Errorf("Marshal() = %q, want %q", data, want)
	}
}
