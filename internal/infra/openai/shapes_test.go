package openai_test

import (
	"errors"
	"testing"

	"voice-shapes/internal/domain"
	"voice-shapes/internal/infra/openai"
)

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.ShapeList
	}{
		{
			name: "empty list",
			raw:  `{"shapes": []}`,
			want: domain.ShapeList{},
		},
		{
			name: "rectangle and circle in order",
			raw:  `{"shapes": [{"type": "rectangle", "width": 4, "height": 2}, {"type": "circle", "radius": 3}]}`,
			want: domain.ShapeList{domain.Rectangle(4, 2), domain.Circle(3)},
		},
		{
			name: "circle first",
			raw:  `{"shapes": [{"type": "circle", "radius": 1.5}, {"type": "rectangle", "width": 5, "height": 5}]}`,
			want: domain.ShapeList{domain.Circle(1.5), domain.Rectangle(5, 5)},
		},
		{
			name: "extra keys ignored",
			raw:  `{"shapes": [{"type": "circle", "radius": 2, "color": "red"}], "note": "ok"}`,
			want: domain.ShapeList{domain.Circle(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := openai.ParseShapes(tt.raw)
			if err != nil {
				t.Fatalf("ParseShapes error: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("length: got %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("shape %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseShapes_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `shapes: rectangle`},
		{"top-level array", `[{"type": "circle", "radius": 1}]`},
		{"missing shapes key", `{"figures": []}`},
		{"null shapes", `{"shapes": null}`},
		{"shapes not an array", `{"shapes": {"type": "circle", "radius": 1}}`},
		{"unknown type", `{"shapes": [{"type": "triangle", "base": 3}]}`},
		{"missing type", `{"shapes": [{"radius": 3}]}`},
		{"rectangle without height", `{"shapes": [{"type": "rectangle", "width": 4}]}`},
		{"circle without radius", `{"shapes": [{"type": "circle", "diameter": 6}]}`},
		{"string measurement", `{"shapes": [{"type": "circle", "radius": "3"}]}`},
		{"null measurement", `{"shapes": [{"type": "rectangle", "width": null, "height": 2}]}`},
		{"zero radius", `{"shapes": [{"type": "circle", "radius": 0}]}`},
		{"negative width", `{"shapes": [{"type": "rectangle", "width": -1, "height": 2}]}`},
		{"one bad entry among good", `{"shapes": [{"type": "circle", "radius": 1}, {"type": "rectangle"}]}`},
		{"non-object entry", `{"shapes": [5]}`},
		{"capitalized shapes key", `{"Shapes": [{"type": "circle", "radius": 3}]}`},
		{"upper-case keys", `{"SHAPES": [{"TYPE": "rectangle", "WIDTH": 4, "Height": 2}]}`},
		{"upper-case type key", `{"shapes": [{"TYPE": "circle", "radius": 1}]}`},
		{"capitalized measurement key", `{"shapes": [{"type": "circle", "Radius": 1}]}`},
		{"null entry", `{"shapes": [null]}`},
		{"json null", `null`},
		{"radius overflows when doubled", `{"shapes": [{"type": "circle", "radius": 1e308}]}`},
		{"width beyond bound", `{"shapes": [{"type": "rectangle", "width": 1e151, "height": 1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := openai.ParseShapes(tt.raw)
			if err == nil {
				t.Fatalf("expected error, got %+v", got)
			}

			var extractionErr *domain.ExtractionError
			if !errors.As(err, &extractionErr) {
				t.Fatalf("expected *domain.ExtractionError, got %T: %v", err, err)
			}
			if extractionErr.Raw != tt.raw {
				t.Errorf("Raw: got %q, want %q", extractionErr.Raw, tt.raw)
			}
			if got != nil {
				t.Errorf("no partial result expected, got %+v", got)
			}
		})
	}
}

func TestParseShapes_LargestMeasurement(t *testing.T) {
	got, err := openai.ParseShapes(`{"shapes": [{"type": "circle", "radius": 1e150}]}`)
	if err != nil {
		t.Fatalf("ParseShapes error: %v", err)
	}
	if len(got) != 1 || got[0].Radius != 1e150 {
		t.Errorf("got %+v", got)
	}
}

func TestDenylist_Match(t *testing.T) {
	denylist := openai.Denylist{"視聴", "字幕", "by H", "見てくれて"}

	tests := []struct {
		text      string
		wantMatch bool
	}{
		{"ご視聴ありがとうございました", true},
		{"字幕作成者", true},
		{"Subtitles by H.", true},
		{"最後まで見てくれてありがとう", true},
		{"縦4横2の長方形", false},
		{"", false},
	}

	for _, tt := range tests {
		_, ok := denylist.Match(tt.text)
		if ok != tt.wantMatch {
			t.Errorf("Match(%q): got %v, want %v", tt.text, ok, tt.wantMatch)
		}
	}
}
