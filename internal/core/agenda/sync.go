package agenda

import "sync"

// SyncRegistry は Registry への呼び出しを 1 つのロックで直列化します。
// 登録は排他ロック、参照は共有ロックで保護されます。
type SyncRegistry struct {
	mu  sync.RWMutex
	reg *Registry
}

// NewSyncRegistry は reg を保護する SyncRegistry を生成します。reg が nil の場合は空の Registry を用います。
func NewSyncRegistry(reg *Registry) *SyncRegistry {
	if reg == nil {
		reg = NewRegistry()
	}
	return &SyncRegistry{reg: reg}
}

// InsertBatch は Registry.InsertBatch を排他的に実行します。
func (s *SyncRegistry) InsertBatch(batch []Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.InsertBatch(batch)
}

// GetEmployee は Registry.GetEmployee を実行します。
func (s *SyncRegistry) GetEmployee(id int64) (Employee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.GetEmployee(id)
}

// GetJob は Registry.GetJob を実行します。
func (s *SyncRegistry) GetJob(id int64) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.GetJob(id)
}

// GetDepartment は Registry.GetDepartment を実行します。
func (s *SyncRegistry) GetDepartment(id int64) (Department, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.GetDepartment(id)
}

// Size は Registry.Size を実行します。
func (s *SyncRegistry) Size() Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Size()
}
