// Package errors provides the error and warning system used across the
// library. Fatal conditions are structured error types carrying stack
// traces via cockroachdb/errors; non-fatal conditions are warning values
// dispatched through a configurable handler, scikit-learn style.
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("autoimpute warning: %v\n", w)
	}
	// zerolog sink, injected lazily by pkg/log to avoid an import cycle.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the handler invoked for every warning raised by
// the library. Installing a no-op handler silences warnings entirely.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink. When set it
// takes precedence over the plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn raises a non-fatal warning. Execution always continues; the
// degraded state the warning describes remains valid.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// DroppedColumnWarning is raised when columns are removed from a dataset
// because they carry no usable signal: entirely null at fit time, or
// present at predict time but already excluded during fitting.
type DroppedColumnWarning struct {
	Columns []string
	Phase   string // "fit" or "predict"
}

func (w *DroppedColumnWarning) Error() string {
	return fmt.Sprintf("columns [%s] dropped during %s: entirely null when the model was fitted",
		strings.Join(w.Columns, ", "), w.Phase)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *DroppedColumnWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Strs("columns", w.Columns).
		Str("phase", w.Phase).
		Str("type", "DroppedColumnWarning")
}

// NewDroppedColumnWarning creates a new DroppedColumnWarning.
func NewDroppedColumnWarning(columns []string, phase string) *DroppedColumnWarning {
	return &DroppedColumnWarning{Columns: columns, Phase: phase}
}

// SingleCategoryWarning is raised when one-hot encoding a categorical
// feature collapses to a single dummy column. Such a feature carries no
// predictive information.
type SingleCategoryWarning struct {
	Dummy   string // the lone dummy column, e.g. "gender_M"
	Feature string // the originating feature, e.g. "gender"
}

func (w *SingleCategoryWarning) Error() string {
	return fmt.Sprintf("%s is the only category for feature %s. Consider removing %s from the dataset",
		w.Dummy, w.Feature, w.Feature)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *SingleCategoryWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("dummy", w.Dummy).
		Str("feature", w.Feature).
		Str("type", "SingleCategoryWarning")
}

// NewSingleCategoryWarning creates a new SingleCategoryWarning.
func NewSingleCategoryWarning(dummy, feature string) *SingleCategoryWarning {
	return &SingleCategoryWarning{Dummy: dummy, Feature: feature}
}

// SparseTestCasesWarning is raised when test-case generation flags fewer
// rows for a column than the requested minimum fraction. Imputation
// evaluation on that column would be statistically weak.
type SparseTestCasesWarning struct {
	Column      string
	Flagged     int
	MinFraction float64
}

func (w *SparseTestCasesWarning) Error() string {
	return fmt.Sprintf("fewer than %.1f%% of rows set to missing for %s (%d flagged)",
		w.MinFraction*100, w.Column, w.Flagged)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *SparseTestCasesWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Int("flagged", w.Flagged).
		Float64("min_fraction", w.MinFraction).
		Str("type", "SparseTestCasesWarning")
}

// NewSparseTestCasesWarning creates a new SparseTestCasesWarning.
func NewSparseTestCasesWarning(column string, flagged int, minFraction float64) *SparseTestCasesWarning {
	return &SparseTestCasesWarning{Column: column, Flagged: flagged, MinFraction: minFraction}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// NotFittedError is returned when Predict or Transform is called on a
// model that has not been fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("autoimpute: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// NoPredictorsError is returned when the predictor matrix for a target
// column has zero usable columns: after excluding the target's own
// signal, nothing remains to predict from.
type NoPredictorsError struct {
	Column string
}

func (e *NoPredictorsError) Error() string {
	return fmt.Sprintf("autoimpute: need at least one predictor column for %q", e.Column)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NoPredictorsError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Str("type", "NoPredictorsError")
}

// NewNoPredictorsError creates a NoPredictorsError with a stack trace attached.
func NewNoPredictorsError(column string) error {
	err := &NoPredictorsError{Column: column}
	return errors.WithStack(err)
}

// ColumnMismatchError is returned when the column set seen at predict
// time differs from the column set retained at fit time.
type ColumnMismatchError struct {
	Missing []string // retained at fit, absent from the new data
	Extra   []string // present in the new data, never fitted
}

func (e *ColumnMismatchError) Error() string {
	return fmt.Sprintf("autoimpute: same columns must appear in fit and predict (missing: [%s], extra: [%s])",
		strings.Join(e.Missing, ", "), strings.Join(e.Extra, ", "))
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ColumnMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Strs("missing", e.Missing).
		Strs("extra", e.Extra).
		Str("type", "ColumnMismatchError")
}

// NewColumnMismatchError creates a ColumnMismatchError with a stack trace attached.
func NewColumnMismatchError(missing, extra []string) error {
	err := &ColumnMismatchError{Missing: missing, Extra: extra}
	return errors.WithStack(err)
}

// DimensionError is returned when input data dimensions differ from what
// a fitted model expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("autoimpute: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError is returned when a parameter fails validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("autoimpute: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace attached.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ModelError is a general error raised by a model operation.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("autoimpute: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("autoimpute: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace attached.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error values
//
// ===========================================================================

var (
	// ErrEmptyData is returned when a dataset or matrix has no rows or columns.
	ErrEmptyData = New("empty data")
)
