package mipbench

import (
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/golang/glog"
)

// solTol is the distance from 1 below which a variable counts as selected.
const solTol = 1e-6

func isOne(v float64) bool {
	return math.Abs(v-1) < solTol
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SolutionFileName returns sol_<name>.txt for the instance at path, where
// name is the base name without its last extension.
func SolutionFileName(path string) string {
	return "sol_" + baseName(path) + ".txt"
}

// ModelFileName returns <name>.lp for the instance at path.
func ModelFileName(path string) string {
	return baseName(path) + ".lp"
}

// ExpandPatterns globs every pattern in argument order. Matches of a single
// pattern are sorted; invalid patterns are logged and skipped.
func ExpandPatterns(patterns []string) []string {
	var files []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			glog.Errorf("bad pattern %q: %v", p, err)
			continue
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return files
}

var (
	// Indented arrays break after every comma. JSON strings cannot hold a
	// raw newline, so anchoring on one leaves string values alone.
	jsonNumbers  = regexp.MustCompile(`\s*(-?[0-9.]+),\n\s*(-?[0-9.]+)(,)?`)
	jsonBrackets = regexp.MustCompile(`\[((-?[0-9.]+,)+-?[0-9.]+)\n\s*\](,?)(\s+)`)
)

// SanitizeJsonArrayLineBreaks puts the numbers of indented JSON arrays back
// on one line.
func SanitizeJsonArrayLineBreaks(json string) string {
	res := json
	for jsonNumbers.MatchString(res) {
		res = jsonNumbers.ReplaceAllString(res, "$1,$2$3")
	}
	for jsonBrackets.MatchString(res) {
		res = jsonBrackets.ReplaceAllString(res, "[$1]$3$4")
	}
	return res
}
