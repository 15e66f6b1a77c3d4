package export

import (
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/rotisserie/eris"
)

// WriteParquet writes rows to a Snappy-compressed Parquet file and returns
// the number of rows written.
func WriteParquet(path string, rows []EpisodeRow) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "parquet: create %s", path)
	}

	writer := parquet.NewGenericWriter[EpisodeRow](file,
		parquet.Compression(&parquet.Snappy),
		parquet.CreatedBy("carenav", "1.0", ""),
	)

	n, err := writer.Write(rows)
	if err != nil {
		_ = writer.Close()
		_ = file.Close()
		return n, eris.Wrap(err, "parquet: write rows")
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return n, eris.Wrap(err, "parquet: close writer")
	}
	if err := file.Close(); err != nil {
		return n, eris.Wrapf(err, "parquet: close %s", path)
	}
	return n, nil
}

// ReadParquet reads an episode table written by WriteParquet.
func ReadParquet(path string) ([]EpisodeRow, error) {
	rows, err := parquet.ReadFile[EpisodeRow](path)
	if err != nil {
		return nil, eris.Wrapf(err, "parquet: read %s", path)
	}
	return rows, nil
}
