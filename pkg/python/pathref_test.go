package python

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/matzehuels/pyfetch/pkg/errors"
)

func TestParseRequirementPaths(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []PathReference
	}{
		{
			name:    "relative path",
			content: "./local_pkg\n",
			want:    []PathReference{{RawPath: "./local_pkg", SourceFile: "requirements.txt"}},
		},
		{
			name:    "quoted with file prefix and extras",
			content: "\"file:../shared[extra]\"\n",
			want:    []PathReference{{RawPath: "../shared", SourceFile: "requirements.txt"}},
		},
		{
			name:    "comment terminates path",
			content: "./pkg # local\n",
			want:    []PathReference{{RawPath: "./pkg", SourceFile: "requirements.txt"}},
		},
		{
			name:    "editable",
			content: "-e ./plugins/core\n-e .\n",
			want: []PathReference{
				{RawPath: "./plugins/core", SourceFile: "requirements.txt", Editable: true},
				{RawPath: ".", SourceFile: "requirements.txt", Editable: true},
			},
		},
		{
			name:    "remote references ignored",
			content: "-e git+https://github.com/psf/requests.git#egg=requests\n-e git+git@github.com:psf/requests.git\nflask\n",
		},
		{
			name:    "no paths",
			content: "flask==2.0\nrequests\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRequirementPaths(ManifestFile{Name: "requirements.txt", Content: tt.content})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRequirementPaths() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPipfilePaths(t *testing.T) {
	content := `
[packages]
requests = "*"
mylib = {path = "./libs/mylib", editable = true}

[dev-packages]
testutils = {path = "../testutils"}
pytest = {version = ">=7"}
`
	got, err := PipfilePaths(ManifestFile{Name: "Pipfile", Content: content})
	if err != nil {
		t.Fatalf("PipfilePaths: %v", err)
	}
	want := []PathReference{
		{RawPath: "./libs/mylib", SourceFile: "Pipfile"},
		{RawPath: "../testutils", SourceFile: "Pipfile"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PipfilePaths() = %+v, want %+v", got, want)
	}
}

func TestPoetryPaths(t *testing.T) {
	content := `
[tool.poetry]
name = "app"

[tool.poetry.dependencies]
python = "^3.11"
core = {path = "../core", develop = true}

[tool.poetry.dev-dependencies]
fixtures = {path = "./fixtures"}

[tool.poetry.group.docs.dependencies]
theme = {path = "./docs/theme"}
`
	got, err := PoetryPaths(ManifestFile{Name: "pyproject.toml", Content: content})
	if err != nil {
		t.Fatalf("PoetryPaths: %v", err)
	}
	want := []PathReference{
		{RawPath: "../core", SourceFile: "pyproject.toml", Poetry: true},
		{RawPath: "./fixtures", SourceFile: "pyproject.toml", Poetry: true},
		{RawPath: "./docs/theme", SourceFile: "pyproject.toml", Poetry: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PoetryPaths() = %+v, want %+v", got, want)
	}
}

func TestPoetryPathsWithoutPoetry(t *testing.T) {
	content := "[project]\nname = \"plain\"\ndependencies = [\"flask\"]\n"
	got, err := PoetryPaths(ManifestFile{Name: "pyproject.toml", Content: content})
	if err != nil {
		t.Fatalf("PoetryPaths: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("PoetryPaths() = %+v, want none", got)
	}
}

func TestTOMLParseErrors(t *testing.T) {
	bad := ManifestFile{Name: "Pipfile", Content: "[packages\nrequests = \"*\""}

	_, err := PipfilePaths(bad)
	var np *errors.ManifestNotParseableError
	if !stderrors.As(err, &np) {
		t.Fatalf("PipfilePaths error = %v, want ManifestNotParseableError", err)
	}
	if np.Path != "Pipfile" {
		t.Errorf("Path = %q, want Pipfile", np.Path)
	}

	bad.Name = "pyproject.toml"
	if _, err := PoetryPaths(bad); !errors.Is(err, errors.ErrCodeManifestNotParseable) {
		t.Errorf("PoetryPaths error = %v, want MANIFEST_NOT_PARSEABLE", err)
	}
}
