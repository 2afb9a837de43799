package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFeedKeepsMostRecent(t *testing.T) {
	f := NewFeed(3, zap.NewNop())

	for i := 1; i <= 5; i++ {
		f.Notify(Notification{Title: fmt.Sprintf("n%d", i), Severity: SeverityInfo})
	}

	recent := f.Recent()
	assert.Len(t, recent, 3)
	assert.Equal(t, "n3", recent[0].Title)
	assert.Equal(t, "n5", recent[2].Title)
}

func TestFeedRecentReturnsCopy(t *testing.T) {
	f := NewFeed(10, zap.NewNop())
	f.Notify(Notification{Title: "original", Severity: SeverityInfo})

	recent := f.Recent()
	recent[0].Title = "mutated"

	assert.Equal(t, "original", f.Recent()[0].Title)
}
