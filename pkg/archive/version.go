package archive

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Version is the content of the VERSION file.
type Version struct {
	Archive   string `json:"archive"`
	Framework string `json:"framework"`
}

// ParseVersion reads a VERSION file:
//
//	QIIME 2
//	archive: 5
//	framework: 2023.9.1
func ParseVersion(data []byte) (Version, error) {
	var v Version
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		line++
		if line == 1 {
			if text != "QIIME 2" {
				return Version{}, fmt.Errorf("VERSION must start with %q, got %q", "QIIME 2", text)
			}
			continue
		}
		key, value, ok := strings.Cut(text, ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "archive":
			v.Archive = strings.TrimSpace(value)
		case "framework":
			v.Framework = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return Version{}, err
	}
	if line == 0 {
		return Version{}, fmt.Errorf("VERSION is empty")
	}
	if v.Archive == "" {
		return Version{}, fmt.Errorf("VERSION has no archive version")
	}
	return v, nil
}
