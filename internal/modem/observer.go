package modem

import (
	"time"

	"github.com/charmbracelet/log"
)

// Stage names one step of the transmit or receive pipeline.
type Stage string

const (
	StagePartition     Stage = "partition"
	StageFrame         Stage = "frame"
	StageShape         Stage = "shape"
	StageModulate      Stage = "modulate"
	StageScale         Stage = "scale"
	StageDetect        Stage = "detect"
	StageDemodulate    Stage = "demodulate"
	StageMatchedFilter Stage = "matched-filter"
	StageSync          Stage = "sync"
	StageSample        Stage = "sample"
	StageDecode        Stage = "decode"
)

// Event is reported to observers after a stage completes.
type Event struct {
	Stage   Stage
	Len     int           // length of the stage output
	Value   any           // stage specific result, e.g. the removed band
	Elapsed time.Duration // time spent in the stage
}

// Observer receives pipeline events. Observers run synchronously on the
// calling goroutine and must not retain the event's Value if it is a slice.
type Observer func(Event)

// LogObserver logs every event at debug level.
func LogObserver(logger *log.Logger) Observer {
	return func(e Event) {
		if e.Value != nil {
			logger.Debug("stage", "name", e.Stage, "len", e.Len, "value", e.Value, "elapsed", e.Elapsed)
			return
		}
		logger.Debug("stage", "name", e.Stage, "len", e.Len, "elapsed", e.Elapsed)
	}
}
