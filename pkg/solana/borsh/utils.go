package borsh

import (
	"bytes"
	"strconv"
	"strings"
)

// TrimAfterNull returns the bytes before the first null as a string. Bytes
// after the first null, including non-null ones, are dropped.
func TrimAfterNull(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// StripNulls removes every null character from s.
func StripNulls(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
