package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysOverdue(t *testing.T) {
	due := date(2025, time.March, 24)

	assert.Equal(t, 0, DaysOverdue(due, due), "same-day return")
	assert.Equal(t, 0, DaysOverdue(due, date(2025, time.March, 20)), "early return")
	assert.Equal(t, 1, DaysOverdue(due, date(2025, time.March, 25)))
	assert.Equal(t, 16, DaysOverdue(due, date(2025, time.April, 9)))
}

func TestDaysOverdue_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2025, time.March, 24, 23, 50, 0, 0, time.UTC)
	returned := time.Date(2025, time.March, 25, 0, 10, 0, 0, time.UTC)

	// Twenty minutes apart on the clock, but one calendar day apart.
	assert.Equal(t, 1, DaysOverdue(due, returned))
}

func TestClose_OnTimeKeepsZeroFee(t *testing.T) {
	rec := NewBorrowingRecord(uuid.New(), uuid.New(), date(2025, time.March, 10), date(2025, time.March, 24))
	require.True(t, rec.Open())

	rec.Close(date(2025, time.March, 24), decimal.RequireFromString("0.5"))

	assert.False(t, rec.Open())
	assert.True(t, rec.LateFee.IsZero())
}

func TestClose_ChargesExactFeePerOverdueDay(t *testing.T) {
	rec := NewBorrowingRecord(uuid.New(), uuid.New(), date(2025, time.March, 10), date(2025, time.March, 24))

	rec.Close(date(2025, time.March, 27), decimal.RequireFromString("0.5"))

	assert.True(t, rec.LateFee.Equal(decimal.RequireFromString("1.5")),
		"expected 1.5, got %s", rec.LateFee)
}
