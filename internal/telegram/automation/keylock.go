package automation

import "sync"

// keyLocks 按 key 串行化的互斥锁集合
// 同一 key 上的全部变更必须持锁执行，不同 key 之间互不阻塞
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	return lock
}

// lock 依参数顺序逐个加锁，返回按相反顺序解锁的函数
// 调用方必须对同一组 key 保持一致的加锁顺序，避免死锁
func (k *keyLocks) lock(keys ...string) func() {
	acquired := make([]*sync.Mutex, 0, len(keys))
	for _, key := range keys {
		lock := k.get(key)
		lock.Lock()
		acquired = append(acquired, lock)
	}
	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}
