package auth

import (
	"sync"

	"github.com/gin-contrib/sessions"
)

// CookieKV は gin-contrib/sessions のセッションを KV として扱います。
type CookieKV struct {
	session sessions.Session
}

// NewCookieKV は CookieKV を作成します。
func NewCookieKV(session sessions.Session) *CookieKV {
	return &CookieKV{session: session}
}

// Get implements KV.
func (k *CookieKV) Get(key string) (string, bool) {
	v, ok := k.session.Get(key).(string)
	return v, ok
}

// Set implements KV.
func (k *CookieKV) Set(key, value string) { k.session.Set(key, value) }

// Delete implements KV.
func (k *CookieKV) Delete(key string) { k.session.Delete(key) }

// Save implements KV.
func (k *CookieKV) Save() error { return k.session.Save() }

// MemoryKV はプロセス内の map を使う KV です。
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
	saves  int
}

// NewMemoryKV は初期値を持つ MemoryKV を作成します。
func NewMemoryKV(initial map[string]string) *MemoryKV {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MemoryKV{values: values}
}

// Get implements KV.
func (k *MemoryKV) Get(key string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.values[key]
	return v, ok
}

// Set implements KV.
func (k *MemoryKV) Set(key, value string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.values[key] = value
}

// Delete implements KV.
func (k *MemoryKV) Delete(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.values, key)
}

// Save implements KV.
func (k *MemoryKV) Save() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.saves++
	return nil
}

// Saves は Save が呼ばれた回数を返します。
func (k *MemoryKV) Saves() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.saves
}
