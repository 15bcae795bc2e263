package utils

import (
	"fmt"
	"math"
)

// RankList returns 1-based positional ranks for an already ordered list.
func RankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := range ranks {
		ranks[i] = uint16(min(i+1, math.MaxUint16))
	}
	return ranks
}

// FormatPrice renders a per-person price with thousands separators, e.g. "1,999.00".
func FormatPrice(p float64) string {
	if p < 0 {
		return "-" + FormatPrice(-p)
	}
	whole := int64(p)
	cents := int64(math.Round((p - float64(whole)) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}
	return fmt.Sprintf("%s.%02d", FormatWithCommas(whole), cents)
}

// FormatWithCommas formats an integer with comma separators
func FormatWithCommas(n int64) string {
	str := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + FormatWithCommas(-n)
	}
	if n < 1000 {
		return str
	}
	result := make([]byte, 0, len(str)+len(str)/3)
	for i := 0; i < len(str); i++ {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, str[i])
	}
	return string(result)
}
