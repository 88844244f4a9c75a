package resolver

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// coordinatePattern is "non-slash segment / non-slash segment"
var coordinatePattern = regexp.MustCompile(`^([^/]+)/([^/]+)$`)

var ErrEmptyCoordinate = errors.New("repository coordinate is empty")

// Coordinate identifies a remote repository as org/repo
type Coordinate struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

func (c Coordinate) String() string {
	return c.Owner + "/" + c.Repo
}

// ParseCoordinate validates an org/repo string
func ParseCoordinate(input string) (Coordinate, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Coordinate{}, ErrEmptyCoordinate
	}
	m := coordinatePattern.FindStringSubmatch(input)
	if m == nil {
		return Coordinate{}, fmt.Errorf("invalid repository coordinate %q: expected org/repo", input)
	}
	return Coordinate{Owner: m[1], Repo: m[2]}, nil
}

// Resolution is the outcome of Resolve
type Resolution struct {
	Coordinate Coordinate
	// FellBack is set when the input was absent or invalid and the
	// configured default was used instead.
	FellBack bool
	// Rejected holds the parse error of the input when FellBack is set
	// because the input was invalid (nil when it was simply absent).
	Rejected error
}

// Resolve parses input and falls back to the default coordinate when the
// input is absent or does not match org/repo. Only an unusable default is
// an error.
func Resolve(input, fallback string) (Resolution, error) {
	coord, err := ParseCoordinate(input)
	if err == nil {
		return Resolution{Coordinate: coord}, nil
	}

	def, defErr := ParseCoordinate(fallback)
	if defErr != nil {
		return Resolution{}, fmt.Errorf("default repository unusable: %w", defErr)
	}

	res := Resolution{Coordinate: def, FellBack: true}
	if !errors.Is(err, ErrEmptyCoordinate) {
		res.Rejected = err
	}
	return res, nil
}
