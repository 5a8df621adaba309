package usecase

import (
	"fmt"
	"time"

	"github.com/polkiloo/erpcore/internal/domain/model"
)

const orderSequenceWidth = 4

// OrderNumberPrefix returns the per-day prefix, e.g. "ORD-20240501-".
func OrderNumberPrefix(prefix string, day time.Time) string {
	return fmt.Sprintf("%s-%s-", prefix, day.Format("20060102"))
}

// NextOrderNumber returns the number following latest within day's prefix.
// latest is the number with the highest numeric suffix issued for the day or "" for none.
func NextOrderNumber(prefix string, day time.Time, latest string) string {
	dayPrefix := OrderNumberPrefix(prefix, day)
	seq, _ := model.OrderSequence(dayPrefix, latest)
	return fmt.Sprintf("%s%0*d", dayPrefix, orderSequenceWidth, seq+1)
}
