package tabulate

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var update = flag.Bool("update", false, "update .golden files")

var patternNonAlphanumeric = regexp.MustCompile("[^A-Za-z0-9]")

//golden reads canned data from golden files and, with -update, rewrites the files from
//the actual output of the run.
type golden struct {
	Name string
}

func (g golden) filename() string {
	return "testdata/" + patternNonAlphanumeric.ReplaceAllString(g.Name, "-") + ".golden"
}

//Equal reports whether actual matches the stored golden content, updating the file
//first when the -update flag is set.
func (g golden) Equal(t *testing.T, actual []byte) bool {
	t.Helper()

	if *update {
		buffer := bytes.Buffer{}
		_ = json.Indent(&buffer, actual, "", "\t")
		if err := os.WriteFile(g.filename(), buffer.Bytes(), 0644); err != nil {
			t.Errorf("failed to update golden file: %v", err)
			return false
		}
	}

	expected, err := os.ReadFile(g.filename())
	if err != nil {
		t.Errorf("failed to read golden file: %v", err)
		return false
	}

	if len(expected) == 0 {
		return assert.Empty(t, string(actual), "expected no output")
	}
	return assert.JSONEq(t, string(expected), string(actual), fmt.Sprintf("%s: output did not match golden file", g.Name))
}
