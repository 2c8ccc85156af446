// yamnet.go YAMNet model specific code
package yamnet

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	tflite "github.com/tphakala/go-tflite"

	"github.com/sonory/soundscape-go/internal/conf"
	"github.com/sonory/soundscape-go/internal/errors"
)

// ErrNotInitialized is returned by Predict before Initialize has succeeded.
var ErrNotInitialized = errors.NewStd("yamnet model not initialized")

// Model wraps the TFLite interpreter for the YAMNet acoustic-event
// classifier. Interpreter access is serialized with a mutex, it is not safe
// for concurrent invocation.
type Model struct {
	interpreter *tflite.Interpreter
	classNames  []string
	settings    *conf.Settings

	mu          sync.Mutex
	initOnce    sync.Once
	initErr     error
	initialized atomic.Bool
}

// New creates an uninitialized Model. Call Initialize before Predict.
func New(settings *conf.Settings) *Model {
	return &Model{
		settings: settings,
	}
}

// Initialize loads the model and class map. It runs at most once, repeated
// calls return the first result.
func (m *Model) Initialize() error {
	m.initOnce.Do(func() {
		m.initErr = m.initializeModel()
		if m.initErr == nil {
			m.initialized.Store(true)
			GetLogger().Info("model initialized",
				"model_path", m.settings.Model.Path,
				"num_classes", len(m.classNames))
		}
	})
	return m.initErr
}

// IsInitialized reports whether Initialize has completed successfully.
func (m *Model) IsInitialized() bool {
	return m.initialized.Load()
}

// ClassNames returns the loaded class map. Nil before initialization.
func (m *Model) ClassNames() []string {
	return m.classNames
}

// initializeModel loads and initializes the TFLite model and its class map.
func (m *Model) initializeModel() error {
	start := time.Now()

	modelData, err := os.ReadFile(m.settings.Model.Path)
	if err != nil {
		return errors.New(err).
			Component("yamnet").
			Category(errors.CategoryModelLoad).
			FileContext(m.settings.Model.Path, 0).
			Timing("model-load", time.Since(start)).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return errors.Newf("cannot load model from %s", m.settings.Model.Path).
			Component("yamnet").
			Category(errors.CategoryModelLoad).
			Build()
	}

	threads := m.settings.Model.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(threads)

	m.interpreter = tflite.NewInterpreter(model, options)
	if m.interpreter == nil {
		return errors.Newf("cannot create interpreter").
			Component("yamnet").
			Category(errors.CategoryModelInit).
			Build()
	}
	if status := m.interpreter.AllocateTensors(); status != tflite.OK {
		return errors.Newf("tensor allocation failed").
			Component("yamnet").
			Category(errors.CategoryModelInit).
			Build()
	}

	m.classNames, err = loadClassMap(m.settings.Model.LabelsPath)
	if err != nil {
		return errors.New(fmt.Errorf("failed to load class map: %w", err)).
			Component("yamnet").
			Category(errors.CategoryLabelLoad).
			FileContext(m.settings.Model.LabelsPath, 0).
			Build()
	}

	// Model data is no longer needed, TFLite keeps its own copy
	runtime.GC()

	return nil
}
