package textutil

import (
	"bytes"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode converts raw bytes to UTF-8 text. A leading BOM is dropped and
// undecodable bytes are replaced with U+FFFD instead of failing.
func Decode(raw []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "\uFFFD")
	}
	return string(out)
}

// ReadFile reads a file and decodes it with Decode.
func ReadFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Decode(raw), nil
}

// PlatformEOL is the line ending used when a file gives no hint.
func PlatformEOL() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// eolProbe bounds how much of a file DetectEOL reads.
const eolProbe = 16 * 1024

// DetectEOL returns "\r\n" or "\n" depending on the first line break in the
// file at path, or PlatformEOL when the file is missing or has no line break.
func DetectEOL(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return PlatformEOL()
	}
	defer f.Close()

	buf := make([]byte, eolProbe)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return PlatformEOL()
	}
	return DetectEOLBytes(buf[:n])
}

// DetectEOLBytes is DetectEOL for in-memory content.
func DetectEOLBytes(b []byte) string {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return PlatformEOL()
	}
	if i > 0 && b[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// ConvertEOL rewrites every line ending in s (CRLF, CR or LF) as eol.
func ConvertEOL(s, eol string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if eol == "\n" {
		return s
	}
	return strings.ReplaceAll(s, "\n", eol)
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
