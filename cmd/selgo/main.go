// Command selgo demonstrates the four feature-selection strategies on a
// numeric CSV dataset whose last column is the class label: univariate
// chi-squared scoring, recursive feature elimination, principal component
// analysis and extra-trees importance.
//
// Usage:
//
//	selgo -data pima-indians-diabetes.data.csv -k 4 -n 3 -components 3
//
// The -data flag accepts a local path or an http(s) URL. With -plot a scree
// chart of the explained variance ratio is written as a PNG.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/selgo-ml/selgo/dataset"
	"github.com/selgo-ml/selgo/decomposition"
	"github.com/selgo-ml/selgo/ensemble"
	"github.com/selgo-ml/selgo/linear"
	"github.com/selgo-ml/selgo/pkg/log"
	"github.com/selgo-ml/selgo/selection"
)

// pimaFeatureNames label the eight attributes of the Pima Indians diabetes
// dataset, the canonical demonstration input.
var pimaFeatureNames = []string{"preg", "plas", "pres", "skin", "test", "mass", "pedi", "age"}

func main() {
	var (
		dataFlag       = flag.String("data", "pima-indians-diabetes.data.csv", "CSV file path or http(s) URL; last column is the class label")
		kFlag          = flag.Int("k", 4, "number of features retained by univariate selection")
		nFlag          = flag.Int("n", 3, "number of features retained by recursive elimination")
		componentsFlag = flag.Int("components", 3, "number of principal components")
		treesFlag      = flag.Int("trees", 100, "number of trees in the extra-trees forest")
		seedFlag       = flag.Int64("seed", 0, "random seed for the randomized estimators")
		plotFlag       = flag.String("plot", "", "write an explained-variance scree chart to this PNG path")
		verboseFlag    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := log.LevelInfo
	if *verboseFlag {
		level = log.LevelDebug
	}
	logger := log.NewZerologProvider(level).GetLoggerWithName("selgo")
	log.InstallWarningSink(logger)

	if err := run(logger, *dataFlag, *kFlag, *nFlag, *componentsFlag, *treesFlag, *seedFlag, *plotFlag); err != nil {
		logger.Error("run failed", err)
		os.Exit(1)
	}
}

func run(logger log.Logger, dataPath string, k, n, components, trees int, seed int64, plotPath string) error {
	ds, err := loadData(dataPath)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded",
		log.SamplesKey, ds.NumSamples(),
		log.FeaturesKey, ds.NumFeatures(),
	)

	X, y := ds.X(), ds.Y()

	if err := runSelectKBest(ds, X, y, k); err != nil {
		return err
	}
	if err := runRFE(ds, X, y, n, seed); err != nil {
		return err
	}
	evr, err := runPCA(X, components)
	if err != nil {
		return err
	}
	if err := runExtraTrees(ds, X, y, trees, seed); err != nil {
		return err
	}

	if plotPath != "" {
		if err := writeScreePlot(evr, plotPath); err != nil {
			return err
		}
		logger.Info("scree chart written", "path", plotPath)
	}
	return nil
}

// loadData picks a file or HTTP source based on the path's scheme and
// attaches the Pima attribute names when the column count matches.
func loadData(path string) (*dataset.Dataset, error) {
	load := dataset.Open
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		load = dataset.Fetch
	}

	ds, err := load(path, dataset.WithFeatureNames(pimaFeatureNames))
	if err == nil {
		return ds, nil
	}
	// Retry without names for datasets of a different width.
	return load(path)
}

func runSelectKBest(ds *dataset.Dataset, X, y mat.Matrix, k int) error {
	kb := selection.NewSelectKBest(selection.Chi2, selection.WithK(k))
	reduced, err := kb.FitTransform(X, y)
	if err != nil {
		return err
	}
	result, err := kb.Result()
	if err != nil {
		return err
	}

	fmt.Printf("=== Univariate selection (chi2, k=%d) ===\n", k)
	fmt.Printf("scores: %s\n", formatFloats(result.Scores))
	fmt.Printf("selected: %s\n", formatSelected(ds, result.Support))
	printHead(reduced, 5)
	fmt.Println()
	return nil
}

func runRFE(ds *dataset.Dataset, X, y mat.Matrix, n int, seed int64) error {
	lr := linear.NewLogisticRegression(linear.WithLRSeed(seed))
	rfe := selection.NewRFE(lr, selection.WithNFeaturesToSelect(n))
	if err := rfe.Fit(X, y); err != nil {
		return err
	}
	result, err := rfe.Result()
	if err != nil {
		return err
	}

	fmt.Printf("=== Recursive feature elimination (n=%d) ===\n", n)
	fmt.Printf("selected: %s\n", formatSelected(ds, result.Support))
	fmt.Printf("ranking: %v\n", result.Ranking)
	fmt.Println()
	return nil
}

func runPCA(X mat.Matrix, components int) ([]float64, error) {
	pca := decomposition.NewPCA(decomposition.WithNComponents(components))
	projected, err := selection.FromTransformer(pca).FitTransform(X, nil)
	if err != nil {
		return nil, err
	}

	fmt.Printf("=== Principal component analysis (components=%d) ===\n", components)
	fmt.Printf("explained variance ratio: %s\n", formatFloats(pca.ExplainedVarianceRatio()))
	fmt.Println("components (rows):")
	comps := pca.Components()
	rows, _ := comps.Dims()
	for c := 0; c < rows; c++ {
		fmt.Printf("  pc%d: %s\n", c+1, formatFloats(comps.RawRowView(c)))
	}
	printHead(projected, 5)
	fmt.Println()
	return pca.ExplainedVarianceRatio(), nil
}

func runExtraTrees(ds *dataset.Dataset, X, y mat.Matrix, trees int, seed int64) error {
	et := ensemble.NewExtraTreesClassifier(
		ensemble.WithNEstimators(trees),
		ensemble.WithETSeed(seed),
	)
	if err := et.Fit(X, y); err != nil {
		return err
	}

	fmt.Printf("=== Extra-trees importance (trees=%d) ===\n", trees)
	importances := et.FeatureImportances()
	for j, imp := range importances {
		fmt.Printf("  %s: %.3f\n", ds.FeatureName(j), imp)
	}
	fmt.Println()
	return nil
}

// formatSelected renders the retained features as their names in column
// order.
func formatSelected(ds *dataset.Dataset, support []bool) string {
	var names []string
	for _, j := range selection.SupportIndices(support) {
		names = append(names, ds.FeatureName(j))
	}
	return strings.Join(names, ", ")
}

func formatFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.3f", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// printHead prints the first n rows of m with three-decimal precision.
func printHead(m mat.Matrix, n int) {
	rows, cols := m.Dims()
	if n > rows {
		n = rows
	}
	fmt.Printf("first %d rows:\n", n)
	for i := 0; i < n; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = m.At(i, j)
		}
		fmt.Printf("  %s\n", formatFloats(row))
	}
}

// writeScreePlot renders the explained variance ratio per component as a bar
// chart.
func writeScreePlot(evr []float64, path string) error {
	p := plot.New()
	p.Title.Text = "Explained variance ratio"
	p.X.Label.Text = "component"
	p.Y.Label.Text = "ratio"

	bars, err := plotter.NewBarChart(plotter.Values(evr), vg.Points(20))
	if err != nil {
		return err
	}
	p.Add(bars)

	names := make([]string, len(evr))
	for i := range names {
		names[i] = fmt.Sprintf("pc%d", i+1)
	}
	p.NominalX(names...)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
