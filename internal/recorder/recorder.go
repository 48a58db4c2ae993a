package recorder

import "StockScreener/internal/model"

// Recorder persists screening history for later analysis.
type Recorder interface {
	RecordRun(result *model.ScreeningResult) error
	Close() error
}
