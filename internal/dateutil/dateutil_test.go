package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedClock_Yesterday(t *testing.T) {
	tests := []struct {
		name          string
		date          time.Time
		wantToday     string
		wantYesterday string
	}{
		{
			name:          "mid month",
			date:          time.Date(2024, 3, 11, 15, 30, 0, 0, time.UTC),
			wantToday:     "2024-03-11",
			wantYesterday: "2024-03-10",
		},
		{
			name:          "month boundary in leap year",
			date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			wantToday:     "2024-03-01",
			wantYesterday: "2024-02-29",
		},
		{
			name:          "month boundary outside leap year",
			date:          time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC),
			wantToday:     "2023-03-01",
			wantYesterday: "2023-02-28",
		},
		{
			name:          "year boundary",
			date:          time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC),
			wantToday:     "2025-01-01",
			wantYesterday: "2024-12-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := FixedClock{Date: tt.date}
			assert.Equal(t, tt.wantToday, clock.Today())
			assert.Equal(t, tt.wantYesterday, clock.Yesterday())
		})
	}
}

func TestSystemClock_KeysAreOneCalendarDayApart(t *testing.T) {
	clock := SystemClock{}

	before := clock.Today()
	yesterday := clock.Yesterday()
	after := clock.Today()
	if before != after {
		t.Skip("clock crossed midnight mid-test")
	}

	todayTime, err := time.Parse(Layout, before)
	require.NoError(t, err)
	yesterdayTime, err := time.Parse(Layout, yesterday)
	require.NoError(t, err)

	assert.Equal(t, todayTime.AddDate(0, 0, -1), yesterdayTime)
}
