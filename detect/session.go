package detect

import (
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

const (
	// InputSize is the fixed square input resolution of the exported model.
	InputSize = 640
	// numCandidates is the number of candidate boxes the model emits.
	numCandidates = 8400
	// boxFields is the per-candidate count of geometry fields (cx, cy, w, h).
	boxFields = 4
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// SessionConfig configures the shared inference session.
type SessionConfig struct {
	// ModelPath is the exported YOLO-World ONNX file.
	ModelPath string
	// SharedLibraryPath overrides the onnxruntime shared library location.
	// Empty keeps whatever path was set by a previous caller or the default.
	SharedLibraryPath string
	// Vocabulary is the class list baked into the model at export time.
	// Defaults to DefaultVocabulary.
	Vocabulary []string
	// IntraOpThreads / InterOpThreads bound onnxruntime parallelism.
	// Zero uses the runtime defaults.
	IntraOpThreads int
	InterOpThreads int
}

// Session is the shared spatial-detector inference session. It is expensive
// to initialize and cheap to invoke, so the process creates one at startup
// and passes it into the pipeline; access is serialized because the
// underlying tensors are reused between runs.
type Session struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	vocab   []string
}

// NewSession loads the model and allocates the reusable IO tensors. The
// output tensor shape is (1, 4+N, 8400) where N is the vocabulary size.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
	}
	ortInitOnce.Do(func() {
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, errors.Wrap(ortInitErr, "initializing onnxruntime environment")
	}

	vocab := cfg.Vocabulary
	if len(vocab) == 0 {
		vocab = DefaultVocabulary
	}

	inputShape := ort.NewShape(1, 3, InputSize, InputSize)
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, errors.Wrap(err, "creating input tensor")
	}

	outputShape := ort.NewShape(1, int64(boxFields+len(vocab)), numCandidates)
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "creating output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "creating session options")
	}
	defer options.Destroy()

	if cfg.IntraOpThreads > 0 {
		options.SetIntraOpNumThreads(cfg.IntraOpThreads)
	}
	if cfg.InterOpThreads > 0 {
		options.SetInterOpNumThreads(cfg.InterOpThreads)
	}
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrapf(err, "creating session for %s", cfg.ModelPath)
	}

	return &Session{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
		vocab:   vocab,
	}, nil
}

// Vocabulary returns the class list the session was created with.
func (s *Session) Vocabulary() []string { return s.vocab }

// run executes one forward pass over the data already staged in the input
// tensor and returns a copy of the raw output, so callers can postprocess
// outside the lock.
func (s *Session) run(fill func(dst []float32) error) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fill(s.input.GetData()); err != nil {
		return nil, err
	}
	if err := s.session.Run(); err != nil {
		return nil, errors.Wrap(err, "running inference")
	}
	out := s.output.GetData()
	return append(make([]float32, 0, len(out)), out...), nil
}

// Close releases the session and its tensors.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if s.session != nil {
		if err := s.session.Destroy(); err != nil {
			firstErr = err
		}
		s.session = nil
	}
	if s.input != nil {
		if err := s.input.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.input = nil
	}
	if s.output != nil {
		if err := s.output.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.output = nil
	}
	return firstErr
}
