package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentOverlaps(t *testing.T) {
	base := time.Date(2099, 1, 10, 9, 0, 0, 0, time.UTC)
	appt := &Appointment{StartAt: base, EndAt: base.Add(AppointmentDuration)}

	tests := []struct {
		name  string
		start time.Time
		want  bool
	}{
		{"same start", base, true},
		{"half past", base.Add(30 * time.Minute), true},
		{"starts before, ends inside", base.Add(-30 * time.Minute), true},
		{"adjacent after", base.Add(time.Hour), false},
		{"adjacent before", base.Add(-time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, appt.Overlaps(tt.start, tt.start.Add(AppointmentDuration)))
		})
	}
}

func TestJSONScan(t *testing.T) {
	var j JSON
	require.NoError(t, j.Scan([]byte(`{"days":["Monday","Friday"]}`)))
	assert.Equal(t, []interface{}{"Monday", "Friday"}, j["days"])

	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)

	assert.Error(t, j.Scan(42))

	v, err := JSON{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParseIntent(t *testing.T) {
	intent, ok := ParseIntent("doctor_query")
	assert.True(t, ok)
	assert.Equal(t, IntentDoctorQuery, intent)

	_, ok = ParseIntent("smalltalk")
	assert.False(t, ok)
}
