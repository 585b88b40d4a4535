package dirhash

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHumanSize parses sizes such as "64K", "2M" or "1.5MB" into bytes
func ParseHumanSize(sizeStr string) (int, error) {
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))
	split := strings.IndexFunc(sizeStr, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	numPart, suffix := sizeStr, ""
	if split >= 0 {
		numPart, suffix = sizeStr[:split], strings.TrimSpace(sizeStr[split:])
	}
	if numPart == "" {
		return 0, fmt.Errorf("no numeric part in size string: %s", sizeStr)
	}

	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %s: %w", sizeStr, err)
	}

	var multiplier int64
	switch suffix {
	case "", "B":
		multiplier = 1
	case "K", "KB", "KIB":
		multiplier = 1024
	case "M", "MB", "MIB":
		multiplier = 1024 * 1024
	case "G", "GB", "GIB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size suffix: %s", suffix)
	}

	result := int64(num * float64(multiplier))
	if result <= 0 {
		return 0, fmt.Errorf("size must be positive: %s", sizeStr)
	}
	if result > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("size too large: %s", sizeStr)
	}

	return int(result), nil
}

// FormatHumanSize renders a byte count with the largest exact binary suffix
func FormatHumanSize(size int) string {
	switch {
	case size > 0 && size%(1024*1024*1024) == 0:
		return fmt.Sprintf("%dG", size/(1024*1024*1024))
	case size > 0 && size%(1024*1024) == 0:
		return fmt.Sprintf("%dM", size/(1024*1024))
	case size > 0 && size%1024 == 0:
		return fmt.Sprintf("%dK", size/1024)
	}
	return strconv.Itoa(size)
}
