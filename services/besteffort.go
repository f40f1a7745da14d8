package services

import (
	"log"
)

// BestEffort runs fn and logs its error instead of returning it. Used for
// side effects (notification records, dispatch publishes) whose failure must
// never fail the primary operation that triggered them.
func BestEffort(label string, fn func() error) {
	if fn == nil {
		return
	}
	if err := fn(); err != nil {
		log.Printf("[BestEffort] %s failed: %v", label, err)
	}
}
