// Package extract pulls plain text out of documents handed to the
// text-to-speech commands.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmpty             = errors.New("input file is empty")
)

// utf-8 BOM left by notepad
var bom = []byte("\xef\xbb\xbf")

// readers by lowercased extension; "" covers extensionless notes
var readers = map[string]func(data []byte) (string, error){
	"":          plainText,
	".txt":      plainText,
	".md":       markdownText,
	".markdown": markdownText,
	".html":     htmlText,
	".htm":      htmlText,
}

// ExtractText returns the speakable text of a txt, markdown, html or pdf file.
func ExtractText(fpath string) (string, error) {
	if _, err := os.Stat(fpath); err != nil {
		return "", fmt.Errorf("input file not found: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(fpath))
	var (
		text string
		err  error
	)
	if ext == ".pdf" {
		text, err = pdfText(fpath)
	} else {
		read, ok := readers[ext]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
		}
		var data []byte
		if data, err = os.ReadFile(fpath); err == nil {
			text, err = read(data)
		}
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filepath.Base(fpath), err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

func plainText(data []byte) (string, error) {
	return string(bytes.TrimPrefix(data, bom)), nil
}

func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	// one line per block element so sentences don't run together
	var blocks []string
	doc.Find("p, h1, h2, h3, h4, h5, h6, li, td, pre, blockquote").Each(func(i int, s *goquery.Selection) {
		if s.ParentsFiltered("p, li, td, blockquote").Length() > 0 {
			return
		}
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			blocks = append(blocks, t)
		}
	})
	if len(blocks) == 0 {
		return strings.Join(strings.Fields(doc.Text()), " "), nil
	}
	return strings.Join(blocks, "\n"), nil
}

func markdownText(data []byte) (string, error) {
	var rendered bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert(bytes.TrimPrefix(data, bom), &rendered); err != nil {
		return "", err
	}
	return htmlText(rendered.Bytes())
}

// pdfText prefers poppler's pdftotext, which keeps reading order better,
// and falls back to the pure go reader.
func pdfText(fpath string) (string, error) {
	if bin, err := exec.LookPath("pdftotext"); err == nil {
		if out, err := exec.Command(bin, "-layout", fpath, "-").Output(); err == nil && len(bytes.TrimSpace(out)) > 0 {
			return string(out), nil
		}
	}
	f, r, err := pdf.Open(fpath)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract text from pdf: %w", err)
	}
	var buf strings.Builder
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}
