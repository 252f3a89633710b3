package dates

import (
	"testing"
	"time"
)

func TestRange_TableTests(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			name: "single day",
			from: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "full week",
			from: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
			want: 7,
		},
		{
			name: "to before from",
			from: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "month boundary",
			from: time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC),
			want: 4,
		},
		{
			name: "ignores time of day",
			from: time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC),
			to:   time.Date(2025, 3, 12, 0, 1, 0, 0, time.UTC),
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Range(tt.from, tt.to)
			if len(got) != tt.want {
				t.Errorf("Range() returned %d days, want %d", len(got), tt.want)
			}
			for i := 1; i < len(got); i++ {
				if !got[i].After(got[i-1]) {
					t.Errorf("Range() not ascending at index %d", i)
				}
			}
		})
	}
}

func TestSubtract(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		days    []time.Time
		covered []time.Time
		want    []time.Time
	}{
		{
			name:    "nothing covered",
			days:    []time.Time{day(1), day(2)},
			covered: nil,
			want:    []time.Time{day(1), day(2)},
		},
		{
			name:    "everything covered",
			days:    []time.Time{day(1), day(2)},
			covered: []time.Time{day(2), day(1)},
			want:    nil,
		},
		{
			name:    "covered with time of day set",
			days:    []time.Time{day(1), day(2), day(3)},
			covered: []time.Time{time.Date(2025, 3, 2, 15, 30, 0, 0, time.UTC)},
			want:    []time.Time{day(1), day(3)},
		},
		{
			name:    "coverage outside range is ignored",
			days:    []time.Time{day(5)},
			covered: []time.Time{day(1), day(9)},
			want:    []time.Time{day(5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subtract(tt.days, tt.covered)
			if len(got) != len(tt.want) {
				t.Fatalf("Subtract() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("Subtract()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			name: "same day",
			from: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "twenty days",
			from: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC),
			want: 20,
		},
		{
			name: "negative when to before from",
			from: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
			want: -2,
		},
		{
			name: "partial day floors to zero",
			from: time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC),
			to:   time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.from, tt.to); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestElapsedDays(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			name: "exactly one day",
			from: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			to:   time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "midnight crossed but day not elapsed",
			from: time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC),
			to:   time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "one hour short of thirty days",
			from: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			to:   time.Date(2025, 3, 31, 11, 0, 0, 0, time.UTC),
			want: 29,
		},
		{
			name: "thirty full days",
			from: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			to:   time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC),
			want: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ElapsedDays(tt.from, tt.to); got != tt.want {
				t.Errorf("ElapsedDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestYesterday(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 30, 0, 0, time.UTC)
	want := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	if got := Yesterday(now); !got.Equal(want) {
		t.Errorf("Yesterday() = %v, want %v", got, want)
	}
}
