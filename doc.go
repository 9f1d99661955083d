// Package autoimpute predicts, per column of a tabular dataset, the
// probability that any given observation is missing, using every other
// column as a predictor.
//
// Its main use is generating supervised test cases for imputation-quality
// evaluation: observed values whose predicted missingness probability is
// high are statistically indistinguishable from genuinely missing data,
// so masking them yields a dataset where the hidden truth is known and
// imputation methods can be scored against it.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/shabarka/autoimpute/dataset"
//	    "github.com/shabarka/autoimpute/missingness"
//	)
//
//	func main() {
//	    age := dataset.NewNumeric("age", []float64{23, 41, 35, 29})
//	    sex := dataset.NewCategorical("sex", []string{"F", "M", "", "M"})
//	    tbl, err := dataset.New(age, sex)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    mc := missingness.New()
//	    masked, err := mc.GenerateTestDataset(tbl)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(masked.NumRows(), mc.TestIndices())
//	}
//
// # Packages
//
//   - dataset: the Table/Column tabular data model
//   - preprocessing: scalers and the block/one-hot/indicator encoder
//   - ensemble: the default gradient-boosted tree classifier
//   - missingness: the per-column missingness classifier and test-case generator
//   - core/model, core/parallel, pkg/errors, pkg/log: shared infrastructure
package autoimpute
