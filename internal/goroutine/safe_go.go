package goroutine

import (
	"runtime/debug"

	"github.com/ignatzorin/artisan-backend/internal/logger"
)

// SafeGo запускает fn в отдельной горутине и переживает panic внутри неё.
// Используется для фоновых задач, сбой которых не должен ронять процесс.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil && logger.Log != nil {
				logger.Log.WithField("goroutine", name).
					Errorf("panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
