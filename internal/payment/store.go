package payment

import (
	"sync"
	"time"

	"github.com/mkirsanov/access_bot/internal/model"
)

// StateStore — хранилище платежных состояний по пользователям.
// Update выполняет атомарное чтение-изменение-запись по ключу и сериализует
// конкурентные операции одного пользователя; разные пользователи друг друга
// не блокируют.
type StateStore interface {
	Get(userID int64) (model.PaymentState, bool)
	SetIfAbsent(userID int64, state model.PaymentState) model.PaymentState
	Update(userID int64, fn func(state *model.PaymentState) error) error
}

type stateEntry struct {
	mu    sync.Mutex
	state model.PaymentState
}

// MemoryStore хранит состояния в памяти процесса
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int64]*stateEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]*stateEntry),
	}
}

// entry возвращает запись пользователя, создавая ее при первом обращении
func (s *MemoryStore) entry(userID int64) *stateEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		e = &stateEntry{state: model.PaymentState{
			UserID:    userID,
			Step:      model.StepIdle,
			UpdatedAt: time.Now(),
		}}
		s.entries[userID] = e
	}
	return e
}

func (s *MemoryStore) Get(userID int64) (model.PaymentState, bool) {
	s.mu.Lock()
	e, ok := s.entries[userID]
	s.mu.Unlock()
	if !ok {
		return model.PaymentState{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, true
}

func (s *MemoryStore) SetIfAbsent(userID int64, state model.PaymentState) model.PaymentState {
	s.mu.Lock()
	e, ok := s.entries[userID]
	if !ok {
		e = &stateEntry{state: state}
		s.entries[userID] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Update держит блокировку записи на все время fn, поэтому одновременно
// выполняется не больше одной проверки квитанции на пользователя.
// Если fn вернула ошибку, состояние остается прежним.
func (s *MemoryStore) Update(userID int64, fn func(state *model.PaymentState) error) error {
	e := s.entry(userID)

	e.mu.Lock()
	defer e.mu.Unlock()

	updated := e.state
	if err := fn(&updated); err != nil {
		return err
	}
	e.state = updated
	return nil
}
