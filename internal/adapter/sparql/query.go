// Package sparql builds per-station SPARQL queries and executes them against
// the LINDAS endpoint with bounded retry.
package sparql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidSiteCode marks a station code outside 1-9999 or not numeric.
	ErrInvalidSiteCode = errors.New("invalid site code")
	// ErrInvalidParameter marks a parameter name with no dimension mapping.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNoParameters marks an empty parameter list.
	ErrNoParameters = errors.New("no parameters specified")
)

// isLiterURI lives outside the hydro dimension namespace upstream.
const isLiterURI = "http://example.com/isLiter"

// namedGraph is the LINDAS graph holding the FOEN hydro data.
const namedGraph = "https://lindas.admin.ch/foen/hydro"

// dimensionNames are the recognized parameter names; all but isLiter resolve
// to {base}/dimension/{name}.
var dimensionNames = []string{
	"station",
	"discharge",
	"measurementTime",
	"waterLevel",
	"dangerLevel",
	"waterTemperature",
	"isLiter",
}

// ParameterURI resolves a parameter name to its dimension URI, or an error
// wrapping ErrInvalidParameter for unknown names.
func ParameterURI(baseURL, name string) (string, error) {
	if name == "isLiter" {
		return isLiterURI, nil
	}
	for _, known := range dimensionNames {
		if name == known {
			return baseURL + "/dimension/" + name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidParameter, name)
}

// ValidateSiteCode checks that code parses to an integer in [1, 9999] and
// returns its canonical form.
func ValidateSiteCode(code string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSiteCode, code)
	}
	if n < 1 || n > 9999 {
		return "", fmt.Errorf("%w: %d out of range", ErrInvalidSiteCode, n)
	}
	return strconv.Itoa(n), nil
}

// BuildQuery assembles the SELECT for one station, filtering predicates to
// the requested parameters. Duplicate parameters are collapsed preserving
// first-seen order. The query returns predicate/object pairs only; callers
// already know which station they asked for.
func BuildQuery(baseURL, siteCode string, parameters []string) (string, error) {
	code, err := ValidateSiteCode(siteCode)
	if err != nil {
		return "", err
	}
	if len(parameters) == 0 {
		return "", ErrNoParameters
	}

	seen := make(map[string]struct{}, len(parameters))
	uris := make([]string, 0, len(parameters))
	for _, p := range parameters {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		uri, err := ParameterURI(baseURL, p)
		if err != nil {
			return "", err
		}
		uris = append(uris, "<"+uri+">")
	}

	var b strings.Builder
	b.WriteString("PREFIX schema: <http://schema.org/>\n")
	b.WriteString("PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>\n")
	b.WriteString("PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>\n\n")
	b.WriteString("SELECT ?predicate ?object\n")
	fmt.Fprintf(&b, "FROM <%s>\n", namedGraph)
	b.WriteString("WHERE {\n")
	b.WriteString("  VALUES ?subject {\n")
	fmt.Fprintf(&b, "    <%s/river/observation/%s>\n", baseURL, code)
	b.WriteString("  }\n")
	b.WriteString("  ?subject ?predicate ?object .\n")
	b.WriteString("  FILTER (?predicate IN (\n")
	b.WriteString("    " + strings.Join(uris, ",\n    ") + "\n")
	b.WriteString("  ))\n")
	b.WriteString("}\n")

	return b.String(), nil
}
