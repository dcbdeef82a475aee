package services

import "sync"

// KeyLockSet menserialkan mutasi pada key yang sama (nomor meja atau id tab):
// mutasi kedua pada key yang sama menunggu commit/rollback mutasi pertama
// sebelum membaca base state-nya. Mutasi pada key berbeda jalan bebas.
type KeyLockSet struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyLockSet() *KeyLockSet {
	return &KeyLockSet{locks: make(map[string]*sync.Mutex)}
}

// Lock -> ambil mutex untuk key, membuatnya kalau belum ada.
// Mengembalikan fungsi unlock.
func (k *KeyLockSet) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
