package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDocNumber(t *testing.T) {
	day := time.Date(2025, 1, 31, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "SOL-20250131-0001", FormatDocNumber("SOL", day, 1))
	assert.Equal(t, "FAC-20250131-0042", FormatDocNumber("FAC", day, 42))
	assert.Equal(t, "FAC-20250131-12345", FormatDocNumber("FAC", day, 12345))
}

func TestParseDocSeq(t *testing.T) {
	assert.Equal(t, 1, ParseDocSeq("SOL-20250131-0001"))
	assert.Equal(t, 42, ParseDocSeq("FAC-20250131-0042"))
	assert.Equal(t, 0, ParseDocSeq(""))
	assert.Equal(t, 0, ParseDocSeq("sin-guiones-"))
	assert.Equal(t, 0, ParseDocSeq("FAC-20250131-xyz"))
}

func TestSequenceRestartsPerDay(t *testing.T) {
	d1 := time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)
	d2 := time.Date(2025, 2, 1, 0, 1, 0, 0, time.UTC)

	n1 := FormatDocNumber("SOL", d1, 9)
	n2 := FormatDocNumber("SOL", d2, ParseDocSeq("")+1)

	assert.Equal(t, "SOL-20250131-0009", n1)
	assert.Equal(t, "SOL-20250201-0001", n2)
}
