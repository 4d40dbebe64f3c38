package coursedesc

import "time"

// Academic years start in September.
const academicYearStartMonth = time.September

// YearsPerDegree is the number of enrollment years scraped for each degree.
const YearsPerDegree = 3

// AcademicYear returns the solar year during which the academic year
// containing t started.
func AcademicYear(t time.Time) int {
	if t.Month() >= academicYearStartMonth {
		return t.Year()
	}
	return t.Year() - 1
}

// CurrentAcademicYear returns the academic year for the current system clock.
func CurrentAcademicYear() int {
	return AcademicYear(time.Now())
}

// EnrollmentYears returns the enrollment years to scrape, given the current
// academic year. Applicants for a M.Sc. are usually third-year (or later)
// B.Sc. students, so the current and previous academic years are excluded:
// the range covers YearsPerDegree years ending right before the previous
// academic year.
func EnrollmentYears(currentAcademicYear int) []int {
	previous := currentAcademicYear - 1
	first := previous - YearsPerDegree

	years := make([]int, 0, YearsPerDegree)
	for y := first; y < previous; y++ {
		years = append(years, y)
	}
	return years
}
