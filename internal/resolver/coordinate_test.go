package resolver

import (
	"testing"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		input   string
		want    Coordinate
		wantErr bool
	}{
		{"octo/repo", Coordinate{"octo", "repo"}, false},
		{"  octo/repo  ", Coordinate{"octo", "repo"}, false},
		{"my-org/my.repo_2", Coordinate{"my-org", "my.repo_2"}, false},
		{"repo", Coordinate{}, true},
		{"", Coordinate{}, true},
		{"/repo", Coordinate{}, true},
		{"octo/", Coordinate{}, true},
		{"octo/repo/extra", Coordinate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCoordinate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCoordinate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCoordinate(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveUsesValidInput(t *testing.T) {
	res, err := Resolve("octo/repo", "default/repo")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.FellBack {
		t.Error("Expected no fallback for valid input")
	}
	if res.Coordinate.String() != "octo/repo" {
		t.Errorf("Coordinate = %s, want octo/repo", res.Coordinate)
	}
}

func TestResolveFallsBackOnBareWord(t *testing.T) {
	res, err := Resolve("gitignore", "github/gitignore")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.FellBack {
		t.Fatal("Expected fallback for bare word")
	}
	if res.Rejected == nil {
		t.Error("Expected the rejected input error to be kept")
	}
	if res.Coordinate.String() != "github/gitignore" {
		t.Errorf("Coordinate = %s, want github/gitignore", res.Coordinate)
	}
}

func TestResolveFallsBackOnAbsentInput(t *testing.T) {
	res, err := Resolve("", "github/gitignore")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.FellBack || res.Rejected != nil {
		t.Errorf("Expected silent fallback, got %+v", res)
	}
}

func TestResolveInvalidDefault(t *testing.T) {
	if _, err := Resolve("bare", "also-bare"); err == nil {
		t.Fatal("Expected error when the default is unusable")
	}
}
