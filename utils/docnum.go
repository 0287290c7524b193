package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDocNumber builds document numbers like SOL-20250131-0001. The
// sequence restarts every day.
func FormatDocNumber(prefix string, t time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, t.Format("20060102"), seq)
}

// ParseDocSeq extracts the trailing sequence of a document number. Returns
// 0 when the number does not have the expected shape.
func ParseDocSeq(number string) int {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0
	}
	seq, err := strconv.Atoi(number[idx+1:])
	if err != nil {
		return 0
	}
	return seq
}
