package services

import (
	"math"
	"sort"
	"strings"
)

// MaxMonthlyIncome caps the income accepted by CalculateROI so the
// five-year totals stay well inside int64.
const MaxMonthlyIncome int64 = 100_000_000

// CourseEconomics holds the fee and typical monthly salaries (INR) for a course
type CourseEconomics struct {
	Slug           string `json:"slug"`
	Title          string `json:"title"`
	DurationMonths int    `json:"duration_months"`
	Fee            int64  `json:"fee"`
	EntrySalary    int64  `json:"entry_salary"`
	MidSalary      int64  `json:"mid_salary"`
	SeniorSalary   int64  `json:"senior_salary"`
}

var courseCatalogue = map[string]CourseEconomics{
	"cabin-crew":       {"cabin-crew", "Cabin Crew Training", 12, 185000, 35000, 60000, 110000},
	"ground-staff":     {"ground-staff", "Airport Ground Staff", 6, 95000, 22000, 35000, 60000},
	"hotel-management": {"hotel-management", "Hotel Management", 12, 150000, 20000, 40000, 85000},
	"culinary-arts":    {"culinary-arts", "Culinary Arts", 12, 165000, 18000, 38000, 90000},
	"travel-tourism":   {"travel-tourism", "Travel & Tourism", 6, 80000, 18000, 30000, 55000},
}

// Courses returns the catalogue sorted by slug
func Courses() []CourseEconomics {
	out := make([]CourseEconomics, 0, len(courseCatalogue))
	for _, c := range courseCatalogue {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// ROIResult is the return on a course fee measured against current income
type ROIResult struct {
	Course               CourseEconomics `json:"course"`
	CurrentMonthlyIncome int64           `json:"current_monthly_income"`
	YearlyGain           int64           `json:"yearly_gain"`
	// PaybackMonths is nil when the entry salary does not beat current income
	PaybackMonths *int  `json:"payback_months"`
	FiveYearNet   int64 `json:"five_year_net"`
}

// CalculateROI compares entry salary with current income. Five-year earnings
// assume two years at entry level, two at mid level and one at senior level.
func CalculateROI(courseSlug string, currentMonthlyIncome int64) (*ROIResult, error) {
	course, ok := courseCatalogue[strings.ToLower(strings.TrimSpace(courseSlug))]
	if !ok {
		return nil, newLeadError(KindUnknownCourse, "course")
	}
	if currentMonthlyIncome > MaxMonthlyIncome {
		return nil, newLeadError(KindInvalidIncome, "current_monthly_income")
	}
	if currentMonthlyIncome < 0 {
		currentMonthlyIncome = 0
	}

	monthlyGain := course.EntrySalary - currentMonthlyIncome
	result := &ROIResult{
		Course:               course,
		CurrentMonthlyIncome: currentMonthlyIncome,
	}

	if monthlyGain > 0 {
		result.YearlyGain = monthlyGain * 12
		months := int(math.Ceil(float64(course.Fee) / float64(monthlyGain)))
		result.PaybackMonths = &months
	}

	fiveYearEarnings := 24*course.EntrySalary + 24*course.MidSalary + 12*course.SeniorSalary
	result.FiveYearNet = fiveYearEarnings - 60*currentMonthlyIncome - course.Fee

	return result, nil
}
