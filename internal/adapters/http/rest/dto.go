package rest

import (
	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
)

// JobDTO は職種の JSON 表現です。
type JobDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DepartmentDTO は部署の JSON 表現です。
type DepartmentDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EmployeeDTO は社員の JSON 表現です。hiring_date は YYYY-MM-DD です。
type EmployeeDTO struct {
	ID         int64         `json:"id"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	HiringDate string        `json:"hiring_date"`
	Job        JobDTO        `json:"job"`
	Department DepartmentDTO `json:"department"`
}

// SizeDTO は登録件数の JSON 表現です。
type SizeDTO struct {
	Employees   int `json:"employees"`
	Jobs        int `json:"jobs"`
	Departments int `json:"departments"`
}

// InsertBatchResponse はバッチ登録の応答です。
type InsertBatchResponse struct {
	Inserted int `json:"inserted"`
}

// ErrorResponse はエラー応答の JSON 表現です。
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func toJobDTO(j agenda.Job) JobDTO {
	return JobDTO{ID: j.ID(), Name: j.Name()}
}

func toDepartmentDTO(d agenda.Department) DepartmentDTO {
	return DepartmentDTO{ID: d.ID(), Name: d.Name()}
}

func toEmployeeDTO(e agenda.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         e.ID(),
		FirstName:  e.FirstName(),
		LastName:   e.LastName(),
		HiringDate: e.HiringDate().Format(agenda.DateLayout),
		Job:        toJobDTO(e.Job()),
		Department: toDepartmentDTO(e.Department()),
	}
}

func toSizeDTO(s agenda.Size) SizeDTO {
	return SizeDTO{Employees: s.Employees, Jobs: s.Jobs, Departments: s.Departments}
}

func (d EmployeeDTO) toDomain() (agenda.Employee, error) {
	job, err := agenda.NewJob(d.Job.ID, d.Job.Name)
	if err != nil {
		return agenda.Employee{}, err
	}
	department, err := agenda.NewDepartment(d.Department.ID, d.Department.Name)
	if err != nil {
		return agenda.Employee{}, err
	}
	return agenda.NewEmployee(d.ID, d.FirstName, d.LastName, d.HiringDate, job, department)
}
