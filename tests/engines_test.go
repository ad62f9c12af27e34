package tests_test

import (
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/spectag/tests/testutils"
)

func TestEnginesCLI(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "engines lists engines, steps and bands",
			Command:     test.Command("engines"),
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("soundlab"),
						expectContains("rule-fallback"),
						expectContains("load_audio"),
						expectContains("noise_removal"),
						expectContains("surge_60"),
					),
				}
			},
		},
		{
			Description: "engines with unknown format fails",
			Command:     test.Command("engines", "--format", "nope"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
	}

	testCase.Run(t)
}
