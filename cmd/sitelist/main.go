// Command sitelist extracts river station codes from a FOEN reference CSV.
// The reference file (latin-1 encoded) tags each station with an lhg_code;
// rows tagged lhg_fluss are river stations, and their lhg_url column holds
// "<code>.htm". The command prints the bare integer codes, ready for the
// SITE_CODES environment variable.
//
// Usage:
//
//	go run ./cmd/sitelist path/to/stations.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <stations.csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(flag.Arg(0)))
}

func run(path string) int {
	codes, err := riverStationCodes(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error processing %s: %v\n", path, err)
		return 1
	}
	if len(codes) == 0 {
		fmt.Fprintln(os.Stderr, "no river stations found")
		return 1
	}

	fmt.Println("River station codes:")
	for _, code := range codes {
		fmt.Println(code)
	}
	fmt.Printf("\nTotal number of river stations: %d\n", len(codes))
	return 0
}

// riverStationCodes reads the latin-1 reference CSV and returns the integer
// codes of all rows tagged lhg_fluss.
func riverStationCodes(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(f))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	codeCol, urlCol := -1, -1
	for i, name := range rows[0] {
		switch strings.TrimSpace(name) {
		case "lhg_code":
			codeCol = i
		case "lhg_url":
			urlCol = i
		}
	}
	if codeCol < 0 || urlCol < 0 {
		return nil, fmt.Errorf("missing lhg_code or lhg_url column")
	}

	var codes []int
	for _, row := range rows[1:] {
		if len(row) <= codeCol || len(row) <= urlCol {
			continue
		}
		if strings.TrimSpace(row[codeCol]) != "lhg_fluss" {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimSpace(row[urlCol]), ".htm")
		code, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("non-numeric station url %q: %w", row[urlCol], err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}
