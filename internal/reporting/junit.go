package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/spboyer/modeleval/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one model.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one prompt answered by one model.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure marks a response scored below the threshold.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError marks a gap: the model produced no scorable response.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a Report to JUnit XML: one suite per model, one
// case per prompt. Responses with an overall score below minScore fail.
func ConvertToJUnit(report *models.Report, minScore float64) *JUnitTestSuites {
	gaps := make(map[string]map[string]string)
	for _, g := range report.Gaps {
		if gaps[g.Model] == nil {
			gaps[g.Model] = make(map[string]string)
		}
		gaps[g.Model][g.Prompt] = g.Error
	}

	rankings := make(map[string]models.ModelRanking, len(report.Rankings))
	for _, r := range report.Rankings {
		rankings[r.Model] = r
	}

	out := &JUnitTestSuites{
		Name: report.Suite,
		Time: float64(report.Summary.DurationMs) / 1000.0,
	}
	for _, model := range report.Models {
		suite := JUnitTestSuite{
			Name:      model,
			Timestamp: report.GeneratedAt.Format(time.RFC3339),
			Properties: []JUnitProperty{
				{Name: "run_id", Value: report.RunID},
				{Name: "mean_overall", Value: fmt.Sprintf("%.4f", rankings[model].MeanOverall)},
				{Name: "wins", Value: fmt.Sprintf("%d", rankings[model].Wins)},
			},
		}
		for _, res := range report.Results {
			tc := JUnitTestCase{
				Name:      res.Prompt,
				Classname: res.Category,
				Time:      float64(res.DurationMs) / 1000.0,
			}
			if msg, ok := gaps[model][res.Prompt]; ok {
				tc.Error = &JUnitError{Message: msg, Type: "InferenceError"}
				suite.Errors++
			} else if s, ok := res.PerModel[model]; ok && s.Overall < minScore {
				tc.Failure = &JUnitFailure{
					Message: fmt.Sprintf("%s: overall=%.3f below %.3f", model, s.Overall, minScore),
					Type:    "LowScore",
					Body:    fmt.Sprintf("quality=%.3f similarity=%.3f words=%d", s.Quality, s.Similarity, s.WordCount),
				}
				suite.Failures++
			}
			suite.Time += tc.Time
			suite.TestCases = append(suite.TestCases, tc)
		}
		suite.Tests = len(suite.TestCases)

		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.Errors += suite.Errors
		out.TestSuites = append(out.TestSuites, suite)
	}
	return out
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(report *models.Report, minScore float64, path string) error {
	suites := ConvertToJUnit(report, minScore)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
