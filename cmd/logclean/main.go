// Command logclean copies a run log while dropping per-day progress lines,
// leaving the warnings and errors worth reading.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultMatch is the message of the per-day debug line written by hylee.
const DefaultMatch = "scraping day"

// Stats counts what clean did.
type Stats struct {
	Kept    int
	Removed int
}

// clean copies r to w line by line, skipping lines that contain match.
func clean(r io.Reader, w io.Writer, match string) (Stats, error) {
	var st Stats
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	bw := bufio.NewWriter(w)
	for sc.Scan() {
		line := sc.Text()
		if match != "" && strings.Contains(line, match) {
			st.Removed++
			continue
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return st, err
		}
		st.Kept++
	}
	if err := sc.Err(); err != nil {
		return st, err
	}
	return st, bw.Flush()
}

func cleanFile(in, out, match string) (Stats, error) {
	src, err := os.Open(in)
	if err != nil {
		return Stats{}, err
	}
	defer src.Close()
	dst, err := os.Create(out)
	if err != nil {
		return Stats{}, err
	}
	st, err := clean(src, dst, match)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return st, err
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var in, out, match string
	flag.StringVar(&in, "in", "hylee.log", "Log file to read")
	flag.StringVar(&out, "out", "hylee_clean.log", "Cleaned log file to write")
	flag.StringVar(&match, "match", DefaultMatch, "Drop lines containing this text")
	flag.Parse()

	if in == out {
		fmt.Fprintln(os.Stderr, "logclean: -in and -out must differ")
		os.Exit(2)
	}
	st, err := cleanFile(in, out, match)
	if err != nil {
		log.Error().Err(err).Str("in", in).Msg("clean failed")
		os.Exit(1)
	}
	log.Info().Int("removed", st.Removed).Int("kept", st.Kept).Str("out", out).Msg("log cleaned")
}
