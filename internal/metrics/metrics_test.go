package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type call struct {
	kind   string
	name   string
	value  float64
	labels Labels
}

type recordingBackend struct {
	calls []call
}

func (r *recordingBackend) IncCounter(name string, delta float64, labels Labels) {
	r.calls = append(r.calls, call{"counter", name, delta, labels})
}

func (r *recordingBackend) ObserveHistogram(name string, value float64, labels Labels) {
	r.calls = append(r.calls, call{"histogram", name, value, labels})
}

func (r *recordingBackend) Flush() error { return nil }

func install(t *testing.T) *recordingBackend {
	t.Helper()
	rb := &recordingBackend{}
	SetBackend(rb)
	t.Cleanup(func() { SetBackend(nil) })
	return rb
}

func TestRecordStep(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus string
	}{
		{name: "success", wantStatus: "success"},
		{name: "failure", err: errors.New("boom"), wantStatus: "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := install(t)

			RecordStep("seed", "walk", tt.err, 1500*time.Millisecond)

			want := Labels{"job": "seed", "step": "walk", "status": tt.wantStatus}
			assert.Equal(t, []call{
				{"counter", StepTotal, 1, want},
				{"histogram", StepDurationSeconds, 1.5, want},
			}, rb.calls)
		})
	}
}

func TestRecordRowsSkipsEmptyDeltas(t *testing.T) {
	rb := install(t)

	RecordRows("seed", "City", 0)
	RecordRows("seed", "Brand", 2)
	RecordStatements("seed", -1)
	RecordStatements("seed", 9)

	assert.Equal(t, []call{
		{"counter", RecordsTotal, 2, Labels{"job": "seed", "table": "Brand"}},
		{"counter", StatementsTotal, 9, Labels{"job": "seed"}},
	}, rb.calls)
}

func TestDefaultBackendIsNoop(t *testing.T) {
	SetBackend(nil)
	RecordStep("seed", "emit", nil, time.Second)
	assert.NoError(t, Flush())
}
