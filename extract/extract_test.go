package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExtractText(t *testing.T) {
	cases := []struct {
		name     string
		file     string
		content  string
		contains []string
		absent   []string
	}{
		{
			name:     "plain text with bom",
			file:     "kr.txt",
			content:  "\xef\xbb\xbf안녕하세요. 반갑습니다.\n",
			contains: []string{"안녕하세요. 반갑습니다."},
		},
		{
			name:     "markdown",
			file:     "notes.md",
			content:  "# Title\n\nSome **bold** text.\n\n- item one\n- item two\n",
			contains: []string{"Title", "Some bold text.", "item one"},
			absent:   []string{"**", "#"},
		},
		{
			name:     "html",
			file:     "page.html",
			content:  "<html><head><style>p{}</style><script>var x=1;</script></head><body><p>Hello   world.</p><p>Second.</p></body></html>",
			contains: []string{"Hello world.", "Second."},
			absent:   []string{"var x", "p{}"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, err := ExtractText(writeFile(t, tc.file, tc.content))
			if err != nil {
				t.Fatalf("ExtractText: %v", err)
			}
			if strings.HasPrefix(text, "\xef\xbb\xbf") {
				t.Errorf("bom not stripped")
			}
			for _, c := range tc.contains {
				if !strings.Contains(text, c) {
					t.Errorf("expected %q in %q", c, text)
				}
			}
			for _, a := range tc.absent {
				if strings.Contains(text, a) {
					t.Errorf("did not expect %q in %q", a, text)
				}
			}
		})
	}
}

func TestExtractTextErrors(t *testing.T) {
	if _, err := ExtractText(writeFile(t, "empty.txt", "  \n\t")); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
	if _, err := ExtractText(writeFile(t, "doc.docx", "x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := ExtractText(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
