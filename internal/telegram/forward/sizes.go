package forward

import (
	"fmt"
	"strconv"
	"strings"
)

const bytesInMB = 1024 * 1024

// DefaultMaxMediaSizeMB 新任务的默认大小上限（MB）
const DefaultMaxMediaSizeMB = 4000

// DefaultMaxMediaSize 新任务的默认大小上限（字节）
const DefaultMaxMediaSize int64 = DefaultMaxMediaSizeMB * bytesInMB

// ParseSizeLimits 解析用户输入的大小区间，返回字节上下限
// 数值默认单位为 MB，支持 b/kb/mb/gb 后缀；接受
// "10"、"1-10"、"500kb-2gb"、"1 to 10"、"1,10" 等形式，"-" 表示清除限制
// 解析失败返回用户可读的错误，不修改任何状态
func ParseSizeLimits(text string) (minBytes, maxBytes *int64, err error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil, nil, fmt.Errorf("empty size input")
	}
	if cleaned == "-" {
		return nil, nil, nil
	}

	normalized := strings.ReplaceAll(strings.ToLower(cleaned), " ", "")
	normalized = strings.ReplaceAll(normalized, "to", "-")

	var minPart, maxPart string
	switch {
	case strings.Contains(normalized, "-"):
		parts := strings.SplitN(normalized, "-", 2)
		minPart, maxPart = parts[0], parts[1]
	case strings.Contains(normalized, ","):
		parts := strings.SplitN(normalized, ",", 2)
		minPart, maxPart = parts[0], parts[1]
	default:
		minPart, maxPart = "", normalized
	}

	minMB, err := parseSizePart(minPart)
	if err != nil {
		return nil, nil, err
	}
	var maxMB float64
	if maxPart != "" {
		maxMB, err = parseSizePart(maxPart)
		if err != nil {
			return nil, nil, err
		}
	}

	if minMB < 0 || maxMB < 0 {
		return nil, nil, fmt.Errorf("size values must be non-negative")
	}

	if minMB > 0 {
		v := int64(minMB * bytesInMB)
		minBytes = &v
	}
	if maxMB > 0 {
		v := int64(maxMB * bytesInMB)
		maxBytes = &v
	}

	if minBytes != nil && maxBytes != nil && *minBytes > *maxBytes {
		return nil, nil, fmt.Errorf("minimum size cannot exceed maximum size")
	}

	return minBytes, maxBytes, nil
}

// parseSizePart 将单个数值解析为 MB；空串视为 0
func parseSizePart(part string) (float64, error) {
	if part == "" {
		return 0, nil
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(part, "kb"):
		multiplier = 1.0 / 1024
		part = strings.TrimSuffix(part, "kb")
	case strings.HasSuffix(part, "mb"):
		part = strings.TrimSuffix(part, "mb")
	case strings.HasSuffix(part, "gb"):
		multiplier = 1024.0
		part = strings.TrimSuffix(part, "gb")
	case strings.HasSuffix(part, "b"):
		multiplier = 1.0 / bytesInMB
		part = strings.TrimSuffix(part, "b")
	}

	if part == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(part, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q", part)
	}
	return value * multiplier, nil
}

// HumanReadableSize 格式化字节数为可读形式
func HumanReadableSize(value int64) string {
	size := float64(value)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if size < 1024 || unit == "TB" {
			if unit == "B" {
				return fmt.Sprintf("%d %s", int64(size), unit)
			}
			formatted := strconv.FormatFloat(size, 'f', 2, 64)
			formatted = strings.TrimRight(strings.TrimRight(formatted, "0"), ".")
			return formatted + " " + unit
		}
		size /= 1024
	}
	return fmt.Sprintf("%d B", value)
}

// FormatSizeRange 格式化大小区间描述
func FormatSizeRange(minBytes, maxBytes *int64) string {
	switch {
	case minBytes == nil && maxBytes == nil:
		return "Any size"
	case minBytes != nil && maxBytes != nil:
		return fmt.Sprintf("%s – %s", formatSizeValue(*minBytes), formatSizeValue(*maxBytes))
	case minBytes != nil:
		return fmt.Sprintf("≥ %s", formatSizeValue(*minBytes))
	default:
		return fmt.Sprintf("≤ %s", formatSizeValue(*maxBytes))
	}
}

func formatSizeValue(value int64) string {
	if value == DefaultMaxMediaSize {
		return fmt.Sprintf("%d MB", DefaultMaxMediaSizeMB)
	}
	return HumanReadableSize(value)
}
