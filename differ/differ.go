package differ

import (
	"fmt"

	"github.com/erraggy/specsync/document"
	"github.com/erraggy/specsync/specerrors"
)

// ChangeType indicates whether a change is an addition, removal, or modification
type ChangeType string

const (
	// ChangeTypeAdded indicates a new element was added
	ChangeTypeAdded ChangeType = "added"
	// ChangeTypeRemoved indicates an element was removed
	ChangeTypeRemoved ChangeType = "removed"
	// ChangeTypeModified indicates an existing element's value was replaced
	ChangeTypeModified ChangeType = "modified"
)

// rank orders change types at an equal address: additions first,
// then modifications, then removals.
func (t ChangeType) rank() int {
	switch t {
	case ChangeTypeAdded:
		return 0
	case ChangeTypeModified:
		return 1
	default:
		return 2
	}
}

// Change represents a single structural difference between two documents.
type Change struct {
	// Address is the reorder-stable location of the change. Array elements
	// are addressed by content fingerprint, never by position.
	Address document.Address
	// Type indicates if this is an addition, removal, or modification
	Type ChangeType
	// OldValue is the subtree in the source document (nil for additions)
	OldValue *document.Node
	// NewValue is the subtree in the target document (nil for removals)
	NewValue *document.Node
	// Message is a human-readable description of the change
	Message string
}

// Path returns the string form of the change's address.
func (c Change) Path() string {
	return c.Address.String()
}

// String returns a formatted one-line representation of the change.
func (c Change) String() string {
	var symbol string
	switch c.Type {
	case ChangeTypeAdded:
		symbol = "+"
	case ChangeTypeRemoved:
		symbol = "-"
	case ChangeTypeModified:
		symbol = "~"
	}
	return fmt.Sprintf("%s %s [%s] %s", symbol, c.Path(), c.Type, c.Message)
}

// Differ compares two document snapshots.
type Differ struct {
	// Logger receives debug diagnostics during the diff walk.
	// Defaults to a no-op logger.
	Logger document.Logger
}

// New creates a new Differ instance with default settings
func New() *Differ {
	return &Differ{Logger: document.NopLogger{}}
}

// Option is a function that configures a diff operation
type Option func(*diffConfig) error

// diffConfig holds configuration for a diff operation
type diffConfig struct {
	// Input sources (exactly one source and one target must be set)
	sourceFilePath *string
	sourceDocument *document.Document
	targetFilePath *string
	targetDocument *document.Document

	logger document.Logger
}

// DiffWithOptions compares two document snapshots using functional options.
//
// Example:
//
//	changes, err := differ.DiffWithOptions(
//	    differ.WithSourceFilePath("api-old.json"),
//	    differ.WithTargetFilePath("api-new.json"),
//	)
func DiffWithOptions(opts ...Option) ([]Change, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("differ: invalid options: %w", err)
	}

	d := New()
	if cfg.logger != nil {
		d.Logger = cfg.logger
	}

	source := cfg.sourceDocument
	if cfg.sourceFilePath != nil {
		source, err = document.ParseFile(*cfg.sourceFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse source: %w", err)
		}
	}

	target := cfg.targetDocument
	if cfg.targetFilePath != nil {
		target, err = document.ParseFile(*cfg.targetFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse target: %w", err)
		}
	}

	return d.Diff(source, target)
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*diffConfig, error) {
	cfg := &diffConfig{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	sourceCount := 0
	if cfg.sourceFilePath != nil {
		sourceCount++
	}
	if cfg.sourceDocument != nil {
		sourceCount++
	}
	if sourceCount == 0 {
		return nil, &specerrors.ConfigError{Option: "source", Message: "must specify a source (use WithSourceFilePath or WithSourceDocument)"}
	}
	if sourceCount > 1 {
		return nil, &specerrors.ConfigError{Option: "source", Message: "must specify exactly one source"}
	}

	targetCount := 0
	if cfg.targetFilePath != nil {
		targetCount++
	}
	if cfg.targetDocument != nil {
		targetCount++
	}
	if targetCount == 0 {
		return nil, &specerrors.ConfigError{Option: "target", Message: "must specify a target (use WithTargetFilePath or WithTargetDocument)"}
	}
	if targetCount > 1 {
		return nil, &specerrors.ConfigError{Option: "target", Message: "must specify exactly one target"}
	}

	return cfg, nil
}

// WithSourceFilePath specifies a file path as the source document
func WithSourceFilePath(path string) Option {
	return func(cfg *diffConfig) error {
		cfg.sourceFilePath = &path
		return nil
	}
}

// WithSourceDocument specifies an already-parsed source document
func WithSourceDocument(doc *document.Document) Option {
	return func(cfg *diffConfig) error {
		cfg.sourceDocument = doc
		return nil
	}
}

// WithTargetFilePath specifies a file path as the target document
func WithTargetFilePath(path string) Option {
	return func(cfg *diffConfig) error {
		cfg.targetFilePath = &path
		return nil
	}
}

// WithTargetDocument specifies an already-parsed target document
func WithTargetDocument(doc *document.Document) Option {
	return func(cfg *diffConfig) error {
		cfg.targetDocument = doc
		return nil
	}
}

// WithLogger sets the logger used for diff diagnostics
func WithLogger(logger document.Logger) Option {
	return func(cfg *diffConfig) error {
		cfg.logger = logger
		return nil
	}
}
