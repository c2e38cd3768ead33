package screening

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// DefaultRetrainDebounce collapses the burst of events an editor save emits.
const DefaultRetrainDebounce = 2 * time.Second

// TrainingWatcher retrains when the training file changes on disk. It
// watches the parent directory so atomic renames are seen too.
type TrainingWatcher struct {
	path     string
	debounce time.Duration
	retrain  func(ctx context.Context) error
	logger   logging.Logger
}

// NewTrainingWatcher returns a watcher calling retrain at most once per
// quiet period of debounce after the last change to path.
func NewTrainingWatcher(path string, debounce time.Duration, retrain func(ctx context.Context) error, log logging.Logger) *TrainingWatcher {
	if debounce <= 0 {
		debounce = DefaultRetrainDebounce
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &TrainingWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		retrain:  retrain,
		logger:   log.Named("training-watcher"),
	}
}

// Run blocks until ctx is cancelled.
func (w *TrainingWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create file watcher")
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "watch "+dir)
	}
	w.logger.Info("watching training data", logging.String("path", w.path), logging.Duration("debounce", w.debounce))

	// Armed by each relevant event; fires once the file has been quiet for
	// the debounce period.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			w.logger.Info("training data changed, retraining", logging.String("path", w.path))
			if err := w.retrain(ctx); err != nil {
				w.logger.Error("retraining after change failed", logging.Err(err))
			}
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", logging.Err(err))
		}
	}
}

//Personal.AI order the ending
