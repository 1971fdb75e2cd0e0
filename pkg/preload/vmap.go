package preload

import (
	"sync"
)

// VMap is a thread-safe generic map with read-write mutex protection.
type VMap[kT comparable, vT any] struct {
	kv map[kT]vT
	mu sync.RWMutex
}

// NewVMap creates and returns a new empty VMap instance.
func NewVMap[kT comparable, vT any]() VMap[kT, vT] {
	return VMap[kT, vT]{
		kv: make(map[kT]vT),
	}
}

// Set stores a value for the given key with write lock protection.
func (vm *VMap[kT, vT]) Set(key kT, val vT) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.kv[key] = val
}

// Get retrieves a value and whether the key exists, with read lock protection.
func (vm *VMap[kT, vT]) Get(key kT) (val vT, ok bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	val, ok = vm.kv[key]
	return
}

// Len returns the number of stored keys.
func (vm *VMap[kT, vT]) Len() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return len(vm.kv)
}

// Dump returns a copy of the map contents with read lock protection.
func (vm *VMap[kT, vT]) Dump() map[kT]vT {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make(map[kT]vT, len(vm.kv))
	for k, v := range vm.kv {
		out[k] = v
	}
	return out
}

// Range iterates over all key-value pairs with read lock protection.
// If f returns false, iteration stops early. f must not modify the map.
func (vm *VMap[kT, vT]) Range(f func(key kT, val vT) bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for k, v := range vm.kv {
		if !f(k, v) {
			return
		}
	}
}

// Delete removes a key from the map. Missing keys are a no-op.
func (vm *VMap[kT, vT]) Delete(key kT) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	delete(vm.kv, key)
}
