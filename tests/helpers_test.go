package tests_test

import (
	"fmt"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// synthFixture writes a synthetic scenario with the binary under test and stores its path in the "file" label.
func synthFixture(scenario string) func(data test.Data, helpers test.Helpers) {
	return func(data test.Data, helpers test.Helpers) {
		path := data.Temp().Path(scenario + ".wav")
		helpers.Ensure("synth", scenario, path)
		data.Labels().Set("file", path)
	}
}

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectNotContains returns a comparator verifying the output does not contain a substring.
func expectNotContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("unexpected substring %q found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectSuggestions returns a comparator verifying the summary line reports n suggestions.
func expectSuggestions(count int) test.Comparator {
	return expectContains(fmt.Sprintf("%d suggestions", count))
}
