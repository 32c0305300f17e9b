package mongo

import (
	"time"

	"github.com/somoapp/campus-events/internal/observability"
)

func observe(collection, op string) func() {
	start := time.Now()
	return func() {
		observability.MongoOpDuration.WithLabelValues(collection, op).Observe(time.Since(start).Seconds())
	}
}
