package agenda

import (
	"strings"
	"time"
)

// DateLayout は入社日の表記 (YYYY-MM-DD) です。
const DateLayout = "2006-01-02"

// Job は職種を表す値オブジェクトです。
type Job struct {
	id   int64
	name string
}

// NewJob は職種を生成します。
func NewJob(id int64, name string) (Job, error) {
	if id < 0 {
		return Job{}, invalid("job", "id", id, "must not be negative")
	}
	if isBlank(name) {
		return Job{}, invalid("job", "name", name, "must not be empty")
	}
	return Job{id: id, name: name}, nil
}

// ID は職種 ID を返します。
func (j Job) ID() int64 { return j.id }

// Name は職種名を返します。
func (j Job) Name() string { return j.name }

// Department は部署を表す値オブジェクトです。
type Department struct {
	id   int64
	name string
}

// NewDepartment は部署を生成します。
func NewDepartment(id int64, name string) (Department, error) {
	if id < 0 {
		return Department{}, invalid("department", "id", id, "must not be negative")
	}
	if isBlank(name) {
		return Department{}, invalid("department", "name", name, "must not be empty")
	}
	return Department{id: id, name: name}, nil
}

// ID は部署 ID を返します。
func (d Department) ID() int64 { return d.id }

// Name は部署名を返します。
func (d Department) Name() string { return d.name }

// Employee は社員エンティティです。職種と部署は値として保持します。
type Employee struct {
	id         int64
	firstName  string
	lastName   string
	hiringDate time.Time
	job        Job
	department Department
}

// NewEmployee は社員を生成します。hiringDate は YYYY-MM-DD 形式で指定します。
func NewEmployee(id int64, firstName, lastName, hiringDate string, job Job, department Department) (Employee, error) {
	if id < 0 {
		return Employee{}, invalid("employee", "id", id, "must not be negative")
	}
	if isBlank(firstName) {
		return Employee{}, invalid("employee", "first_name", firstName, "must not be empty")
	}
	if isBlank(lastName) {
		return Employee{}, invalid("employee", "last_name", lastName, "must not be empty")
	}
	hired, err := ParseHiringDate(hiringDate)
	if err != nil {
		return Employee{}, err
	}
	if isBlank(job.name) {
		return Employee{}, invalid("employee", "job", job.id, "must be constructed with NewJob")
	}
	if isBlank(department.name) {
		return Employee{}, invalid("employee", "department", department.id, "must be constructed with NewDepartment")
	}

	return Employee{
		id:         id,
		firstName:  firstName,
		lastName:   lastName,
		hiringDate: hired,
		job:        job,
		department: department,
	}, nil
}

// ParseHiringDate は YYYY-MM-DD 形式の日付を UTC の 0 時として解釈します。
func ParseHiringDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, invalid("employee", "hiring_date", raw, "not in iso format YYYY-MM-DD")
	}
	return t, nil
}

// ID は社員 ID を返します。
func (e Employee) ID() int64 { return e.id }

// FirstName は名を返します。
func (e Employee) FirstName() string { return e.firstName }

// LastName は姓を返します。
func (e Employee) LastName() string { return e.lastName }

// HiringDate は入社日を返します。
func (e Employee) HiringDate() time.Time { return e.hiringDate }

// Job は社員の職種を返します。
func (e Employee) Job() Job { return e.job }

// Department は社員の部署を返します。
func (e Employee) Department() Department { return e.department }

// Equal はすべてのフィールドが等しい場合に true を返します。
func (e Employee) Equal(other Employee) bool {
	return e.id == other.id &&
		e.firstName == other.firstName &&
		e.lastName == other.lastName &&
		e.hiringDate.Equal(other.hiringDate) &&
		e.job == other.job &&
		e.department == other.department
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
