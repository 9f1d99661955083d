package log

// Standard attribute keys for the library's operations. Using these
// keys keeps log output consistent and filterable across packages.

// Model and operation context.
const (
	// ModelNameKey identifies the model type.
	// Examples: "MissingnessClassifier", "GradientBoostingClassifier"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "predict_proba", "transform",
	// "gen_test_indices", "gen_test_dataset"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package or component logging.
	// Examples: "missingness", "preprocessing", "ensemble"
	ComponentKey = "ml.component"
)

// Data shape and characteristics.
const (
	// RowsKey is the number of rows in the dataset being processed.
	RowsKey = "data.rows"

	// ColumnKey names the dataset column an operation applies to.
	ColumnKey = "data.column"

	// NumericColumnsKey is the number of numeric columns in a block.
	NumericColumnsKey = "data.numeric_columns"

	// DummyColumnsKey is the number of one-hot dummy columns in a block.
	DummyColumnsKey = "data.dummy_columns"

	// DroppedColumnsKey lists columns dropped from a dataset.
	DroppedColumnsKey = "data.dropped_columns"
)

// Test-case generation.
const (
	// ThresholdKey is the missingness-probability threshold in use.
	ThresholdKey = "testgen.threshold"

	// TestIndicesKey lists the row indices flagged as test cases.
	TestIndicesKey = "testgen.indices"
)
