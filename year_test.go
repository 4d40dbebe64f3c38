package coursedesc

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestAcademicYear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{
			name: "september starts the new academic year",
			date: time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
			want: 2024,
		},
		{
			name: "december belongs to the current academic year",
			date: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
			want: 2024,
		},
		{
			name: "january belongs to the previous solar year",
			date: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
			want: 2024,
		},
		{
			name: "august is still the previous academic year",
			date: time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC),
			want: 2024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := AcademicYear(tt.date); got != tt.want {
				t.Errorf("AcademicYear(%v) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestEnrollmentYears(t *testing.T) {
	t.Parallel()

	// For academic year 2024 the previous one is 2023; the scraped range
	// covers the three years before that.
	got := EnrollmentYears(2024)
	want := []int{2020, 2021, 2022}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EnrollmentYears(2024) mismatch (-want +got):\n%s", diff)
	}
}
