package chat

import (
	"sync"
	"time"
)

var typingLabels = [...]string{"Typing", "Typing.", "Typing..", "Typing..."}

func nextTypingLabel(current string) string {
	for i, label := range typingLabels {
		if label == current {
			return typingLabels[(i+1)%len(typingLabels)]
		}
	}
	return typingLabels[len(typingLabels)-1]
}

// repeatingTask calls fn every period until Cancel. Cancel never waits for fn.
type repeatingTask struct {
	stop chan struct{}
	once sync.Once
}

func newRepeatingTask() *repeatingTask {
	return &repeatingTask{stop: make(chan struct{})}
}

func (t *repeatingTask) start(period time.Duration, fn func()) {
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

func (t *repeatingTask) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.stop) })
}
