package handler

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxExactInt より小さい整数は float64 で誤差なく表現できます。
const maxExactInt = 1 << 53

var errMalformedMessage = errors.New("malformed message")

func jobToStruct(j agenda.Job) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":   idValue(j.ID()),
		"name": structpb.NewStringValue(j.Name()),
	}}
}

func departmentToStruct(d agenda.Department) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":   idValue(d.ID()),
		"name": structpb.NewStringValue(d.Name()),
	}}
}

func employeeToStruct(e agenda.Employee) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":          idValue(e.ID()),
		"first_name":  structpb.NewStringValue(e.FirstName()),
		"last_name":   structpb.NewStringValue(e.LastName()),
		"hiring_date": structpb.NewStringValue(e.HiringDate().Format(agenda.DateLayout)),
		"job":         structpb.NewStructValue(jobToStruct(e.Job())),
		"department":  structpb.NewStructValue(departmentToStruct(e.Department())),
	}}
}

// idValue は int64 の全範囲を保つため ID を10進文字列で送ります。
func idValue(id int64) *structpb.Value {
	return structpb.NewStringValue(strconv.FormatInt(id, 10))
}

func sizeToStruct(s agenda.Size) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"employees":   structpb.NewNumberValue(float64(s.Employees)),
		"jobs":        structpb.NewNumberValue(float64(s.Jobs)),
		"departments": structpb.NewNumberValue(float64(s.Departments)),
	}}
}

func batchToList(batch []agenda.Employee) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(batch))
	for _, e := range batch {
		values = append(values, structpb.NewStructValue(employeeToStruct(e)))
	}
	return &structpb.ListValue{Values: values}
}

func jobFromStruct(s *structpb.Struct) (agenda.Job, error) {
	id, err := idField(s, "id")
	if err != nil {
		return agenda.Job{}, err
	}
	name, err := stringField(s, "name")
	if err != nil {
		return agenda.Job{}, err
	}
	return agenda.NewJob(id, name)
}

func departmentFromStruct(s *structpb.Struct) (agenda.Department, error) {
	id, err := idField(s, "id")
	if err != nil {
		return agenda.Department{}, err
	}
	name, err := stringField(s, "name")
	if err != nil {
		return agenda.Department{}, err
	}
	return agenda.NewDepartment(id, name)
}

func employeeFromStruct(s *structpb.Struct) (agenda.Employee, error) {
	id, err := idField(s, "id")
	if err != nil {
		return agenda.Employee{}, err
	}
	firstName, err := stringField(s, "first_name")
	if err != nil {
		return agenda.Employee{}, err
	}
	lastName, err := stringField(s, "last_name")
	if err != nil {
		return agenda.Employee{}, err
	}
	hiringDate, err := stringField(s, "hiring_date")
	if err != nil {
		return agenda.Employee{}, err
	}
	jobStruct, err := structField(s, "job")
	if err != nil {
		return agenda.Employee{}, err
	}
	job, err := jobFromStruct(jobStruct)
	if err != nil {
		return agenda.Employee{}, err
	}
	departmentStruct, err := structField(s, "department")
	if err != nil {
		return agenda.Employee{}, err
	}
	department, err := departmentFromStruct(departmentStruct)
	if err != nil {
		return agenda.Employee{}, err
	}
	return agenda.NewEmployee(id, firstName, lastName, hiringDate, job, department)
}

func sizeFromStruct(s *structpb.Struct) (agenda.Size, error) {
	employees, err := intField(s, "employees")
	if err != nil {
		return agenda.Size{}, err
	}
	jobs, err := intField(s, "jobs")
	if err != nil {
		return agenda.Size{}, err
	}
	departments, err := intField(s, "departments")
	if err != nil {
		return agenda.Size{}, err
	}
	return agenda.Size{Employees: int(employees), Jobs: int(jobs), Departments: int(departments)}, nil
}

func batchFromList(list *structpb.ListValue) ([]agenda.Employee, error) {
	batch := make([]agenda.Employee, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("%w: element %d is not an object", errMalformedMessage, i)
		}
		e, err := employeeFromStruct(s)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		batch = append(batch, e)
	}
	return batch, nil
}

// idField は10進文字列の ID を受け付けます。数値の場合は誤差なく表現できる範囲に限ります。
func idField(s *structpb.Struct, name string) (int64, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", errMalformedMessage, name)
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return intField(s, name)
	}
	id, err := strconv.ParseInt(str.StringValue, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q must be a decimal integer, got %q", errMalformedMessage, name, str.StringValue)
	}
	return id, nil
}

func intField(s *structpb.Struct, name string) (int64, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", errMalformedMessage, name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: field %q must be a number", errMalformedMessage, name)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.Abs(f) >= maxExactInt {
		return 0, fmt.Errorf("%w: field %q must be an integer, got %v", errMalformedMessage, name, f)
	}
	return int64(f), nil
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", errMalformedMessage, name)
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: field %q must be a string", errMalformedMessage, name)
	}
	return str.StringValue, nil
}

func structField(s *structpb.Struct, name string) (*structpb.Struct, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing field %q", errMalformedMessage, name)
	}
	inner := v.GetStructValue()
	if inner == nil {
		return nil, fmt.Errorf("%w: field %q must be an object", errMalformedMessage, name)
	}
	return inner, nil
}
