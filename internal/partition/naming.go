package partition

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SplitName splits path at the last extension separator of its final
// element. A leading dot (".hidden") is not an extension.
func SplitName(path string) (base, ext string) {
	ext = filepath.Ext(path)
	if ext == "" || strings.HasPrefix(filepath.Base(path), ext) {
		return path, ""
	}
	return strings.TrimSuffix(path, ext), ext
}

// PartName returns "<base>_part_<NN><ext>" for the 1-based index, padded
// to at least width digits.
func PartName(path string, index, width int) string {
	base, ext := SplitName(path)
	return fmt.Sprintf("%s_part_%0*d%s", base, width, index, ext)
}

// partGlob matches every part file PartName can produce for path.
func partGlob(path string) string {
	base, ext := SplitName(path)
	return escapeGlob(base) + "_part_[0-9]*" + escapeGlob(ext)
}

// isPartOf reports whether name is "<base>_part_<digits><ext>" for path.
func isPartOf(name, path string) bool {
	base, ext := SplitName(path)
	prefix := filepath.Base(base) + "_part_"
	file := filepath.Base(name)
	if len(file) <= len(prefix)+len(ext) ||
		!strings.HasPrefix(file, prefix) || !strings.HasSuffix(file, ext) {
		return false
	}
	index := file[len(prefix) : len(file)-len(ext)]
	for _, r := range index {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`*?[]{}\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// indexWidth is the zero-padding for n parts, never below two digits.
func indexWidth(n int) int {
	w := len(fmt.Sprint(n))
	if w < 2 {
		return 2
	}
	return w
}
