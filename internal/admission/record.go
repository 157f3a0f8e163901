package admission

import "time"

// Courses is the closed set of course names an application may select.
// Matching is exact and case-sensitive.
var Courses = []string{
	"MSc in Cyber Security",
	"MSc Information Systems & Computing",
	"MSc Data Analytics",
}

// ValidCourse reports whether name is one of the recognized courses.
func ValidCourse(name string) bool {
	for _, c := range Courses {
		if c == name {
			return true
		}
	}
	return false
}

// Application is one validated admissions submission, prior to persistence.
// Text fields are trimmed and StartYear/StartMonth are coerced integers.
type Application struct {
	Name           string
	Address        string
	Qualifications string
	Course         string
	StartYear      int
	StartMonth     int
}

// Record is the persisted entity. ID, RegistrationNumber and CreatedAt are
// assigned by the registry at persistence time; a record is immutable once
// stamped.
type Record struct {
	ID                 int64
	Application        Application
	RegistrationNumber string
	CreatedAt          time.Time
}
