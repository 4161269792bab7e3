package schedules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSeatLabels(t *testing.T) {
	t.Run("labels walk rows of four seats", func(t *testing.T) {
		labels := GenerateSeatLabels(6)
		assert.Equal(t, []string{"1A", "1B", "1C", "1D", "2A", "2B"}, labels)
	})

	t.Run("count matches and labels are unique", func(t *testing.T) {
		labels := GenerateSeatLabels(40)
		assert.Len(t, labels, 40)

		seen := make(map[string]bool, len(labels))
		for _, l := range labels {
			assert.False(t, seen[l], "duplicate label %s", l)
			seen[l] = true
		}
		assert.Equal(t, "10D", labels[39])
	})

	t.Run("zero count yields no labels", func(t *testing.T) {
		assert.Empty(t, GenerateSeatLabels(0))
	})
}
