package util

import (
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"teledrive-web/pkg/apierror"
)

const maxFilenameRunes = 255

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

var reservedNames = func() map[string]struct{} {
	names := map[string]struct{}{}
	for _, n := range strings.Fields("CON PRN AUX NUL COM1 COM2 COM3 COM4 COM5 COM6 COM7 COM8 COM9 LPT1 LPT2 LPT3 LPT4 LPT5 LPT6 LPT7 LPT8 LPT9") {
		names[n] = struct{}{}
	}
	return names
}()

func invalidName(message, detail string) error {
	return apierror.New("INVALID_FILENAME", message, detail, http.StatusBadRequest)
}

// SanitizeFilename normalizes a user-supplied file name before it is
// sent to storage: control and invisible runes are stripped, path and
// shell-hostile characters replaced with underscores, and the result
// truncated to 255 runes. Names that survive as empty, reserved, or
// dot-relative are rejected.
func SanitizeFilename(name string, allowHidden bool) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", invalidName("filename cannot be empty", "")
	}
	if strings.ContainsRune(trimmed, 0) {
		return "", invalidName("filename contains null bytes", "")
	}

	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.TrimSpace(unsafeFilenameChars.ReplaceAllString(b.String(), "_"))
	if cleaned == "" {
		return "", invalidName("filename is invalid after sanitization", trimmed)
	}

	// Truncate by runes so a multi-byte character is never split.
	if runes := []rune(cleaned); len(runes) > maxFilenameRunes {
		cleaned = string(runes[:maxFilenameRunes])
	}

	if cleaned == "." || cleaned == ".." {
		return "", invalidName("filename cannot be a relative path element", cleaned)
	}
	if strings.HasPrefix(cleaned, ".") && !allowHidden {
		return "", invalidName("hidden filenames are not allowed", cleaned)
	}

	stem := cleaned
	if idx := strings.Index(cleaned, "."); idx >= 0 {
		stem = cleaned[:idx]
	}
	if _, reserved := reservedNames[strings.ToUpper(stem)]; reserved {
		return "", invalidName("reserved filename is not allowed", cleaned)
	}

	return cleaned, nil
}
