package agenda

// Reader は Registry の参照系操作です。
type Reader interface {
	GetEmployee(id int64) (Employee, bool)
	GetJob(id int64) (Job, bool)
	GetDepartment(id int64) (Department, bool)
	Size() Size
}

// Store は Registry の公開操作をまとめたインターフェースです。
// Registry と SyncRegistry の両方が満たします。
type Store interface {
	Reader
	InsertBatch(batch []Employee) error
}

var (
	_ Store = (*Registry)(nil)
	_ Store = (*SyncRegistry)(nil)
)
