package agenda

// Size は登録件数 (社員, 職種, 部署) を表します。
type Size struct {
	Employees   int
	Jobs        int
	Departments int
}

// Registry は社員・職種・部署をメモリ上に保持します。
//
// Registry は内部でロックを取りません。複数の goroutine から利用する場合は
// SyncRegistry を経由して呼び出しを直列化してください。
type Registry struct {
	employees   map[int64]Employee
	jobs        map[int64]Job
	departments map[int64]Department
}

// NewRegistry は空の Registry を生成します。
func NewRegistry() *Registry {
	return &Registry{
		employees:   make(map[int64]Employee),
		jobs:        make(map[int64]Job),
		departments: make(map[int64]Department),
	}
}

// GetEmployee は ID で社員を取得します。存在しない場合は false を返します。
func (r *Registry) GetEmployee(id int64) (Employee, bool) {
	e, ok := r.employees[id]
	return e, ok
}

// GetJob は ID で職種を取得します。存在しない場合は false を返します。
func (r *Registry) GetJob(id int64) (Job, bool) {
	j, ok := r.jobs[id]
	return j, ok
}

// GetDepartment は ID で部署を取得します。存在しない場合は false を返します。
func (r *Registry) GetDepartment(id int64) (Department, bool) {
	d, ok := r.departments[id]
	return d, ok
}

// Size は現在の登録件数を返します。
func (r *Registry) Size() Size {
	return Size{
		Employees:   len(r.employees),
		Jobs:        len(r.jobs),
		Departments: len(r.departments),
	}
}

// InsertBatch は社員のバッチを一括登録します。
//
// すべての検証を状態変更の前に行うため、失敗した場合 Registry は呼び出し前と
// 完全に同じ状態のままです。返却されるエラーは *DuplicateIDError,
// *AlreadyExistsError, *ConsistencyError のいずれかです。
func (r *Registry) InsertBatch(batch []Employee) error {
	if err := checkDuplicateIDs(batch); err != nil {
		return err
	}

	for _, e := range batch {
		if existing, ok := r.employees[e.id]; ok {
			return &AlreadyExistsError{ID: e.id, Existing: existing}
		}
	}

	newJobs, err := planReferences("job", r.jobs, batch, Employee.Job)
	if err != nil {
		return err
	}

	newDepartments, err := planReferences("department", r.departments, batch, Employee.Department)
	if err != nil {
		return err
	}

	for _, j := range newJobs {
		r.jobs[j.id] = j
	}
	for _, d := range newDepartments {
		r.departments[d.id] = d
	}
	for _, e := range batch {
		r.employees[e.id] = e
	}

	return nil
}

func checkDuplicateIDs(batch []Employee) error {
	seen := make(map[int64]struct{}, len(batch))
	for _, e := range batch {
		if _, ok := seen[e.id]; ok {
			return &DuplicateIDError{ID: e.id}
		}
		seen[e.id] = struct{}{}
	}
	return nil
}

type reference interface {
	comparable
	ID() int64
	Name() string
}

// planReferences は batch が参照する職種または部署を stored と突き合わせ、
// 新規に追加すべきものを batch 内の出現順で返します。
// batch 内で同じ ID が異なる名前で現れても拒否せず、後に現れたものを採用します。
func planReferences[T reference](kind string, stored map[int64]T, batch []Employee, ref func(Employee) T) ([]T, error) {
	var (
		pending []T
		index   = make(map[int64]int)
	)

	for _, e := range batch {
		proposed := ref(e)
		id := proposed.ID()

		if existing, ok := stored[id]; ok {
			if existing != proposed {
				return nil, &ConsistencyError{Kind: kind, ID: id, Stored: existing.Name(), Proposed: proposed.Name()}
			}
			continue
		}

		if i, ok := index[id]; ok {
			pending[i] = proposed
			continue
		}
		index[id] = len(pending)
		pending = append(pending, proposed)
	}

	return pending, nil
}
