package bot

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type pending int

const (
	pendingNone pending = iota
	pendingAdd
	pendingRemove
)

// console — состояние пульта одного менеджера: ожидаемый ввод, выбранные фильтры
// и результаты последнего поиска.
type console struct {
	pending  pending
	selected []string
	found    []string
}

// consoles хранит пульты в памяти; давно неактивные вытесняются.
type consoles struct {
	mu    sync.Mutex
	items *expirable.LRU[int64, console]
}

func newConsoles(size int, ttl time.Duration) *consoles {
	return &consoles{items: expirable.NewLRU[int64, console](size, nil, ttl)}
}

func (c *consoles) get(id int64) console {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, _ := c.items.Get(id)
	return v
}

func (c *consoles) update(id int64, fn func(*console)) console {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, _ := c.items.Get(id)
	fn(&v)
	c.items.Add(id, v)
	return v
}
