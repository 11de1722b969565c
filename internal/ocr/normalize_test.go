package ocr

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		opts Options
		want string
	}{
		{"empty", "", Options{}, ""},
		{"crlf and tabs", "a\t\tb\r\nc  d\r\n", Options{}, "a b\nc d"},
		{"blank runs", "a\n\n\n\nb", Options{}, "a\n\nb"},
		{"box rule removed", "a\n-----\nb", Options{}, "a\n\nb"},
		{"split digit group", "ワイパー ¥3, 800", Options{}, "ワイパー ¥3,800"},
		{"full width folded", "オイル　￥４，８００", Options{FoldWidth: true}, "オイル ¥4,800"},
		{"full width kept", "￥４", Options{}, "￥４"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Normalize(c.in, c.opts); got != c.want {
				t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestNormalizeLine_KeepsDates(t *testing.T) {
	in := " 2024/05/01 "
	if got := NormalizeLine(in, Options{FoldWidth: true}); got != "2024/05/01" {
		t.Fatalf("got %q", got)
	}
}

func TestConfidence(t *testing.T) {
	if Confidence("   ") != 0 {
		t.Fatal("blank text should score 0")
	}
	weak := Confidence("hello")
	strong := Confidence("株式会社サンプル自動車\n2024年5月1日\nワイパーブレード ¥3,800\nエンジンオイル ¥4,800")
	if strong <= weak {
		t.Fatalf("expected estimate-like text to score higher: %v <= %v", strong, weak)
	}
	if strong > 1 {
		t.Fatalf("score out of range: %v", strong)
	}
}

func TestLines(t *testing.T) {
	if got := Lines(""); got != nil {
		t.Fatalf("Lines(\"\") = %q", got)
	}
	got := Lines("a\n\nb")
	if len(got) != 3 || got[1] != "" || got[2] != "b" {
		t.Fatalf("blank lines must keep their index: %q", got)
	}
}
