package cgt

import (
	"encoding/json"
	"testing"
)

func TestJsonObjectWriter(t *testing.T) {
	tests := []struct {
		name  string
		build func(w *jsonObjectWriter)
		want  string
	}{
		{
			name:  "empty object",
			build: func(w *jsonObjectWriter) {},
			want:  "{}",
		},
		{
			name: "keys keep insertion order",
			build: func(w *jsonObjectWriter) {
				w.Append("ticker", "VOD").Append("quantity", 100)
			},
			want: `{"ticker":"VOD","quantity":100}`,
		},
		{
			name: "zero value is still appended",
			build: func(w *jsonObjectWriter) {
				w.Append("fees", 0)
			},
			want: `{"fees":0}`,
		},
		{
			name: "optional skips zero values",
			build: func(w *jsonObjectWriter) {
				w.Append("command", "buy")
				w.Optional("fees", 0)
				w.Optional("currency", "")
				w.Optional("tax", 12)
			},
			want: `{"command":"buy","tax":12}`,
		},
		{
			name: "embed merges a raw object",
			build: func(w *jsonObjectWriter) {
				w.Append("command", "sell")
				w.Embed(json.RawMessage(`{"date":"2024-01-15","ticker":"VOD"}`))
				w.Append("quantity", 50)
			},
			want: `{"command":"sell","date":"2024-01-15","ticker":"VOD","quantity":50}`,
		},
		{
			name: "embed from a struct",
			build: func(w *jsonObjectWriter) {
				w.EmbedFrom(struct {
					Date   string `json:"date"`
					Ticker string `json:"ticker"`
				}{Date: "2024-01-15", Ticker: "VOD"})
				w.Append("ratio", 2)
			},
			want: `{"date":"2024-01-15","ticker":"VOD","ratio":2}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var w jsonObjectWriter
			tc.build(&w)
			got, err := w.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}
