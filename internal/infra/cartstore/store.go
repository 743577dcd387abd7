package cartstore

import (
	"sync"

	"giftbloom/internal/domain/model"
)

// カートが変わった時に呼ばれる。受け手はカート全体を取り直す想定。
type Listener func(sessionID string)

// セッションごとのカートをメモリで保持する。
// サーバー側に永続化しない（チェックアウト後は破棄される）。
type Store struct {
	mu        sync.RWMutex
	carts     map[string]*model.Cart
	listeners []Listener
}

func New() *Store {
	return &Store{carts: map[string]*model.Cart{}}
}

func (s *Store) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Get はカートのコピーを返す（無ければ空カート）
func (s *Store) Get(sessionID string) model.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[sessionID]
	if !ok {
		return model.Cart{}
	}
	items := make([]model.CartItem, len(c.Items))
	copy(items, c.Items)
	return model.Cart{Items: items}
}

// Mutate はカートを変更してリスナーへ通知する（無ければ作る）
func (s *Store) Mutate(sessionID string, fn func(c *model.Cart)) model.Cart {
	s.mu.Lock()
	c, ok := s.carts[sessionID]
	if !ok {
		c = &model.Cart{}
		s.carts[sessionID] = c
	}
	fn(c)

	items := make([]model.CartItem, len(c.Items))
	copy(items, c.Items)
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	//通知はロックの外で
	for _, l := range listeners {
		l(sessionID)
	}

	return model.Cart{Items: items}
}

// Clear はセッションのカートを破棄する
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	delete(s.carts, sessionID)
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(sessionID)
	}
}
