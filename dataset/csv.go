package dataset

import (
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
)

// Source yields a Dataset from some external location. The library treats
// data loading as a pluggable collaborator so the same demonstration can run
// against a local file, an in-memory reader, or a remote URL.
type Source interface {
	Load() (*Dataset, error)
}

// LoadCSV parses comma-delimited numeric rows from r into a Dataset. Every
// row must have the same field count; the final field is the label and the
// preceding fields are attributes. There is no header row.
//
// Errors:
//   - ModelError wrapping ErrEmptyData if r contains no rows
//   - DimensionError if rows have inconsistent field counts
//   - ValueError if a field cannot be parsed as a number
func LoadCSV(r io.Reader, opts ...Option) (_ *Dataset, err error) {
	defer selgoErrors.Recover(&err, "dataset.LoadCSV")

	reader := csv.NewReader(r)
	// Enforce rectangular input ourselves to report a DimensionError with
	// the offending width.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, selgoErrors.Wrap(err, "failed to read csv")
	}
	if len(records) == 0 {
		return nil, selgoErrors.NewModelError("dataset.LoadCSV", "empty data", selgoErrors.ErrEmptyData)
	}

	width := len(records[0])
	if width < 2 {
		return nil, selgoErrors.NewValueError("dataset.LoadCSV", "rows need at least one attribute and one label field")
	}

	nSamples := len(records)
	nFeatures := width - 1
	x := mat.NewDense(nSamples, nFeatures, nil)
	y := mat.NewDense(nSamples, 1, nil)

	for i, record := range records {
		if len(record) != width {
			return nil, selgoErrors.NewDimensionError("dataset.LoadCSV", width, len(record), 1)
		}
		for j, field := range record {
			v, perr := strconv.ParseFloat(field, 64)
			if perr != nil {
				return nil, selgoErrors.NewValueError("dataset.LoadCSV",
					"row "+strconv.Itoa(i)+" field "+strconv.Itoa(j)+": not a number: "+field)
			}
			if j < nFeatures {
				x.Set(i, j, v)
			} else {
				y.Set(i, 0, v)
			}
		}
	}

	return New(x, y, opts...)
}

// FileSource loads a Dataset from a local CSV file.
type FileSource struct {
	Path string
	Opts []Option
}

// Load reads and parses the file.
func (s FileSource) Load() (*Dataset, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, selgoErrors.Wrapf(err, "failed to open %s", s.Path)
	}
	defer func() { _ = f.Close() }()

	return LoadCSV(f, s.Opts...)
}

// HTTPSource fetches a Dataset once from a remote URL at load time.
type HTTPSource struct {
	URL    string
	Client *http.Client
	Opts   []Option
}

// Load performs a single GET and parses the response body.
func (s HTTPSource) Load() (*Dataset, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(s.URL)
	if err != nil {
		return nil, selgoErrors.Wrapf(err, "failed to fetch %s", s.URL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, selgoErrors.Newf("failed to fetch %s: status %d", s.URL, resp.StatusCode)
	}

	return LoadCSV(resp.Body, s.Opts...)
}

// Open is a convenience wrapper around FileSource.
func Open(path string, opts ...Option) (*Dataset, error) {
	return FileSource{Path: path, Opts: opts}.Load()
}

// Fetch is a convenience wrapper around HTTPSource with the default client.
func Fetch(url string, opts ...Option) (*Dataset, error) {
	return HTTPSource{URL: url, Opts: opts}.Load()
}
