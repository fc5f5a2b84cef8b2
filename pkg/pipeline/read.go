package pipeline

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"
	"github.com/willbeason/bondsmith"
	"github.com/willbeason/ru-go-emotions/pkg/tables"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// readRaw loads the raw table at path. Files ending in ".gz" are decompressed.
// If p is non-nil a bar tracks how much of the file has been read.
func readRaw(path string, p *mpb.Progress) (*tables.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("getting stat: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}

	countReader := bondsmith.NewCountReader(file)
	var reader io.Reader = countReader

	if p != nil {
		reader = &progressReader{
			Reader: countReader,
			count:  func() int64 { return int64(countReader.Count()) },
			bar: p.AddBar(stat.Size(),
				mpb.AppendDecorators(decor.AverageETA(decor.ET_STYLE_GO)),
				mpb.PrependDecorators(decor.Name(filepath.Base(path))),
				mpb.PrependDecorators(decor.CountersNoUnit("%d/%d", decor.WCSyncSpace)),
				mpb.BarRemoveOnComplete()),
			start: time.Now(),
		}
	}

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("starting gzip reader stream: %w", err)
		}
		defer func() {
			_ = gz.Close()
		}()
		reader = gz
	}

	return tables.ReadCSV(bufio.NewReader(reader))
}

// progressReader advances bar to the number of bytes read from the file.
type progressReader struct {
	io.Reader
	count func() int64
	bar   *mpb.Bar
	start time.Time
	seen  int64
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	if current := r.count(); current > r.seen {
		r.bar.IncrBy(int(current-r.seen), time.Since(r.start))
		r.seen = current
	}
	return n, err
}
