package knowledge

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ExtractText returns the plain text content of a supported document.
// Markdown and text files are read verbatim; PDFs go through a
// best-effort stream extractor that handles simple, text-based PDFs.
// Scanned or exotically encoded PDFs may yield little or nothing.
func ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case ".pdf":
		return extractPDFText(path)
	default:
		return "", fmt.Errorf("unsupported file type: %s", path)
	}
}

func extractPDFText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return "", fmt.Errorf("%s is not a valid PDF file", path)
	}
	return extractStreams(data), nil
}

// extractStreams walks stream...endstream blocks, inflating
// FlateDecode-compressed content where possible, and pulls text out of
// the PDF text-showing operators.
func extractStreams(data []byte) string {
	var sb strings.Builder

	streamStart := []byte("stream")
	streamEnd := []byte("endstream")

	pos := 0
	for {
		start := bytes.Index(data[pos:], streamStart)
		if start == -1 {
			break
		}
		start += pos + len(streamStart)
		for start < len(data) && (data[start] == '\r' || data[start] == '\n') {
			start++
		}

		end := bytes.Index(data[start:], streamEnd)
		if end == -1 {
			break
		}
		end += start

		content := data[start:end]
		if inflated, err := inflate(content); err == nil {
			content = inflated
		}

		if text := extractTextOperators(string(content)); text != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(text)
		}

		pos = end + len(streamEnd)
	}

	return sb.String()
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

var (
	parenTextRE = regexp.MustCompile(`\(([^)]*)\)\s*(?:Tj|')`)
	arrayTextRE = regexp.MustCompile(`\[([^\]]+)\]\s*TJ`)
	parenRE     = regexp.MustCompile(`\(([^)]*)\)`)
)

func extractTextOperators(content string) string {
	var sb strings.Builder

	for _, match := range parenTextRE.FindAllStringSubmatch(content, -1) {
		if text := decodePDFString(match[1]); text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	}

	for _, match := range arrayTextRE.FindAllStringSubmatch(content, -1) {
		for _, inner := range parenRE.FindAllStringSubmatch(match[1], -1) {
			sb.WriteString(decodePDFString(inner[1]))
		}
		sb.WriteString(" ")
	}

	return strings.TrimSpace(sb.String())
}

// decodePDFString resolves the escape sequences of a PDF literal string.
func decodePDFString(s string) string {
	var sb strings.Builder
	reader := strings.NewReader(s)

	for {
		ch, _, err := reader.ReadRune()
		if err != nil {
			break
		}
		if ch != '\\' {
			sb.WriteRune(ch)
			continue
		}

		next, _, err := reader.ReadRune()
		if err != nil {
			sb.WriteRune(ch)
			break
		}
		switch next {
		case 'n':
			sb.WriteRune('\n')
		case 'r':
			sb.WriteRune('\r')
		case 't':
			sb.WriteRune('\t')
		case '(', ')', '\\':
			sb.WriteRune(next)
		default:
			if next >= '0' && next <= '7' {
				octal := string(next)
				for i := 0; i < 2; i++ {
					n, _, err := reader.ReadRune()
					if err != nil || n < '0' || n > '7' {
						if err == nil {
							reader.UnreadRune()
						}
						break
					}
					octal += string(n)
				}
				if val, err := strconv.ParseInt(octal, 8, 32); err == nil {
					sb.WriteRune(rune(val))
				}
			} else {
				sb.WriteRune(next)
			}
		}
	}
	return sb.String()
}
