// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command bsppick builds or loads a box index file and picks the box
// containing each of a list of points.
package main

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/gogama/bspfile"
	"github.com/gogama/bspfile/bsptree"
	"github.com/segmentio/encoding/json"
)

// The bsppick version number. Set at build.
var version = "v0.1.0"

// Keeps the config field names intact under obfuscation so the cli
// package generates readable options.
var _ = reflect.TypeOf(config{})

type config struct {
	Boxes     string `cli:"" env:"BSPPICK_BOXES"      help:"JSON file holding the box list to build an index from."`
	File      string `cli:"" env:"BSPPICK_FILE"       help:"Index file to write after building, or to read when no box list is given."`
	Seek      bool   `cli:"" env:"BSPPICK_SEEK"       help:"Pick by seeking within the index file instead of loading it."`
	Points    string `cli:"" env:"BSPPICK_POINTS"     help:"Space separated x,y points to pick."`
	LeafSize  int    `cli:"" env:"BSPPICK_LEAF_SIZE"  help:"Largest number of boxes in an index leaf."`
	LogLevel  string `cli:"" env:"BSPPICK_LOG_LEVEL"  help:"Log level (debug|info|warning|error)."`
	LogIndent bool   `cli:"" env:"BSPPICK_LOG_INDENT" help:"Indent logs."`
	Version   bool   `cli:"" env:"-"                  help:"Show version."`
	Help      bool   `cli:"" env:"-"                  help:"Show help."`
}

// jsonBox is the box list input format.
type jsonBox struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
	Data int64   `json:"data"`
}

type point struct {
	x, y float64
}

func main() {
	conf := config{
		LeafSize: bsptree.DefaultLeafSize,
		LogLevel: logs.InfoLevel.String(),
	}

	cli.Register().
		Help("Picks the boxes containing points using a binary space partition index.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	if err := run(conf, os.Stdout); err != nil {
		logs.Fatal(err)
	}
}

func validateConfig(conf config) error {
	if len(conf.Boxes) == 0 && len(conf.File) == 0 {
		return errors.New("have to specify a box list, an index file, or both")
	}

	if conf.Seek && len(conf.Boxes) != 0 {
		return errors.New("seek requires reading the index file, not building from a box list")
	}

	if conf.LeafSize < 0 {
		return errors.New("invalid leaf size").
			WithTag("leaf_size", conf.LeafSize)
	}

	return nil
}

func run(conf config, w io.Writer) error {
	points, err := parsePoints(conf.Points)
	if err != nil {
		return err
	}

	if conf.Seek {
		return seekPoints(conf.File, points, w)
	}

	var f *bspfile.File
	if len(conf.Boxes) != 0 {
		if f, err = buildFile(conf); err != nil {
			return err
		}
	} else if f, err = readFile(conf.File); err != nil {
		return err
	}

	for _, p := range points {
		r, ok := f.Pick(p.x, p.y)
		printResult(w, p, r, ok)
	}
	return nil
}

func buildFile(conf config) (*bspfile.File, error) {
	boxes, err := loadBoxes(conf.Boxes)
	if err != nil {
		return nil, err
	}

	f, err := bspfile.Build(boxes, bsptree.Builder{LeafSize: conf.LeafSize})
	if err != nil {
		return nil, errors.New("building index failed").
			WithTag("box_file", conf.Boxes).
			Wrap(err)
	}
	logs.WithTag("boxes", len(f.Boxes())).
		WithTag("splits", f.Index().SplitCount()).
		WithTag("leaf_refs", f.Index().LeafRefCount()).
		Info("index built")

	if len(conf.File) != 0 {
		if err := writeFile(conf.File, f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func loadBoxes(name string) ([]bsptree.Box, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.New("error loading box list from file").
			WithTag("file_name", name).
			Wrap(err)
	}

	var in []jsonBox
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, errors.New("error decoding box list").
			WithTag("file_name", name).
			Wrap(err)
	}

	boxes := make([]bsptree.Box, len(in))
	for i, jb := range in {
		boxes[i] = bsptree.Box{
			Rect: bsptree.Rect{X: jb.X, Y: jb.Y, X2: jb.X2, Y2: jb.Y2},
			Data: jb.Data,
		}
	}
	return boxes, nil
}

func writeFile(name string, f *bspfile.File) error {
	out, err := os.Create(name)
	if err != nil {
		return errors.New("error creating index file").
			WithTag("file_name", name).
			Wrap(err)
	}
	n, err := f.WriteTo(out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.New("error writing index file").
			WithTag("file_name", name).
			Wrap(err)
	}
	logs.WithTag("file_name", name).
		WithTag("bytes", n).
		Info("index written")
	return nil
}

func readFile(name string) (*bspfile.File, error) {
	in, err := os.Open(name)
	if err != nil {
		return nil, errors.New("error opening index file").
			WithTag("file_name", name).
			Wrap(err)
	}
	defer in.Close()

	f, err := bspfile.ReadFile(in)
	if err != nil {
		return nil, errors.New("error reading index file").
			WithTag("file_name", name).
			Wrap(err)
	}
	logs.WithTag("file_name", name).
		WithTag("boxes", len(f.Boxes())).
		WithTag("splits", f.Index().SplitCount()).
		Debug("index read")
	return f, nil
}

func seekPoints(name string, points []point, w io.Writer) error {
	in, err := os.Open(name)
	if err != nil {
		return errors.New("error opening index file").
			WithTag("file_name", name).
			Wrap(err)
	}
	defer in.Close()

	for _, p := range points {
		if _, err := in.Seek(0, io.SeekStart); err != nil {
			return errors.New("error rewinding index file").
				WithTag("file_name", name).
				Wrap(err)
		}
		r, ok, err := bspfile.Seek(in, p.x, p.y)
		if err != nil {
			return errors.New("error seeking index file").
				WithTag("file_name", name).
				WithTag("point", formatPoint(p)).
				Wrap(err)
		}
		printResult(w, p, r, ok)
	}
	return nil
}

// parsePoints parses a space separated list of "x,y" pairs.
func parsePoints(s string) ([]point, error) {
	fields := strings.Fields(s)
	points := make([]point, 0, len(fields))
	for _, field := range fields {
		xs, ys, found := strings.Cut(field, ",")
		if !found {
			return nil, errors.New("point is not an x,y pair").
				WithTag("point", field)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, errors.New("invalid point x coordinate").
				WithTag("point", field).
				Wrap(err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, errors.New("invalid point y coordinate").
				WithTag("point", field).
				Wrap(err)
		}
		points = append(points, point{x, y})
	}
	return points, nil
}

func formatPoint(p point) string {
	return strconv.FormatFloat(p.x, 'g', -1, 64) + "," + strconv.FormatFloat(p.y, 'g', -1, 64)
}

func printResult(w io.Writer, p point, r bsptree.Result, ok bool) {
	if !ok {
		fmt.Fprintf(w, "%s -> none\n", formatPoint(p))
		return
	}
	fmt.Fprintf(w, "%s -> %d %d\n", formatPoint(p), r.Index, r.Data)
}
