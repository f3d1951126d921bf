package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/blakestevenson/vodboard/internal/xtream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

const (
	// BulkFilename is the artifact name for multi-item exports
	BulkFilename = "aria2c-commands.txt"

	singleSuffix = "-aria2c-commands.txt"
)

var (
	// ErrNoMovieIDs is returned when an export names no movies
	ErrNoMovieIDs = errors.New("at least one movie ID is required")

	// ErrInvalidMovieID is returned for non-positive movie ids
	ErrInvalidMovieID = errors.New("movie IDs must be positive integers")
)

var itemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vodboard",
	Subsystem: "export",
	Name:      "items_total",
	Help:      "Export items by resolution outcome.",
}, []string{"outcome"})

// MovieFetcher resolves one stream id to its detail payload
type MovieFetcher interface {
	GetMovieInfo(ctx context.Context, streamID int64) (*xtream.VODInfo, error)
}

// Linker derives download URLs and command lines for a movie
type Linker interface {
	DownloadURL(m xtream.Movie) string
	Aria2Command(m xtream.Movie) string
}

// Result is the outcome of resolving one requested id
type Result struct {
	MovieID int64         `json:"movieId"`
	OK      bool          `json:"ok"`
	Error   string        `json:"error,omitempty"`
	Movie   *xtream.Movie `json:"-"`
	Err     error         `json:"-"`
}

// Item is the structured export record for one movie
type Item struct {
	MovieName   string `json:"movieName"`
	Extension   string `json:"extension"`
	DownloadURL string `json:"downloadUrl"`
}

// Export is the generated artifact plus per-id bookkeeping
type Export struct {
	Commands  []string `json:"commands"`
	Items     []Item   `json:"exportData"`
	Results   []Result `json:"results"`
	Requested int      `json:"requested"`
	Exported  int      `json:"exported"`
}

// ValidateIDs checks the requested ids before any remote call is made
func ValidateIDs(ids []int64) error {
	if len(ids) == 0 {
		return ErrNoMovieIDs
	}
	for _, id := range ids {
		if id <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidMovieID, id)
		}
	}
	return nil
}

// Resolve fetches details for every id concurrently. A failed lookup is
// recorded in its Result and never cancels the others. Results keep the
// order of ids.
func Resolve(ctx context.Context, fetcher MovieFetcher, ids []int64, concurrency int) []Result {
	results := make([]Result, len(ids))

	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, id := range ids {
		g.Go(func() error {
			res := Result{MovieID: id}
			info, err := fetcher.GetMovieInfo(ctx, id)
			if err != nil {
				res.Err = err
				res.Error = err.Error()
				itemsTotal.WithLabelValues("failed").Inc()
			} else {
				m := info.Movie()
				res.Movie = &m
				res.OK = true
				itemsTotal.WithLabelValues("resolved").Inc()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Budget bounds how long Resolve can take for n ids when each lookup is
// limited to perCall and at most concurrency run at once. Zero means no
// bound, which is the case when perCall is zero.
func Budget(n, concurrency int, perCall time.Duration) time.Duration {
	if perCall <= 0 || n <= 0 {
		return 0
	}
	if concurrency <= 0 || concurrency > n {
		concurrency = n
	}
	rounds := (n + concurrency - 1) / concurrency
	return time.Duration(rounds) * perCall
}

// Build turns resolved results into command lines and export records.
// Failed results are skipped, not replaced with placeholders.
func Build(linker Linker, results []Result) *Export {
	e := &Export{
		Commands:  []string{},
		Items:     []Item{},
		Results:   results,
		Requested: len(results),
	}
	for _, r := range results {
		if !r.OK || r.Movie == nil {
			continue
		}
		e.add(linker, *r.Movie)
	}
	return e
}

// Generate builds an export from movies that are already resolved
func Generate(linker Linker, movies []xtream.Movie) *Export {
	e := &Export{
		Commands:  make([]string, 0, len(movies)),
		Items:     make([]Item, 0, len(movies)),
		Results:   make([]Result, 0, len(movies)),
		Requested: len(movies),
	}
	for i := range movies {
		m := movies[i]
		e.Results = append(e.Results, Result{MovieID: int64(m.StreamID), OK: true, Movie: &m})
		e.add(linker, m)
	}
	return e
}

func (e *Export) add(linker Linker, m xtream.Movie) {
	e.Commands = append(e.Commands, linker.Aria2Command(m))
	e.Items = append(e.Items, Item{
		MovieName:   m.DisplayName(),
		Extension:   m.ContainerExtension,
		DownloadURL: linker.DownloadURL(m),
	})
	e.Exported++
}

// Failed lists the ids that could not be resolved
func (e *Export) Failed() []int64 {
	var failed []int64
	for _, r := range e.Results {
		if !r.OK {
			failed = append(failed, r.MovieID)
		}
	}
	return failed
}

// Filename names the text artifact: {movieName}-aria2c-commands.txt when a
// single id was requested and resolved, aria2c-commands.txt otherwise.
func Filename(e *Export) string {
	if e == nil || e.Requested != 1 || e.Exported != 1 || len(e.Items) != 1 {
		return BulkFilename
	}
	name := strings.TrimSpace(e.Items[0].MovieName)
	if name == "" {
		return BulkFilename
	}
	return filenameSanitizer.Replace(name) + singleSuffix
}

var filenameSanitizer = strings.NewReplacer(
	"/", "_",
	`\`, "_",
	`"`, "'",
	"\n", " ",
	"\r", " ",
)

// WriteCommands writes one command per line
func WriteCommands(w io.Writer, commands []string) error {
	bw := bufio.NewWriter(w)
	for i, cmd := range commands {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(cmd); err != nil {
			return err
		}
	}
	return bw.Flush()
}
