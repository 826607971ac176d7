package output

import (
	"encoding/json"
	"fmt"

	"github.com/tessark/gurl/internal/client"
)

// HeaderField is one response header in report order.
type HeaderField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Report is the JSON rendering of one exchange.
type Report struct {
	URL       string        `json:"url"`
	Proto     string        `json:"proto"`
	Status    int           `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Redirects int           `json:"redirects"`
	ElapsedMS int64         `json:"elapsed_ms"`
	Headers   []HeaderField `json:"headers"`
	Body      string        `json:"body"`
}

func (s *Sink) writeJSONReport(res *client.Result) error {
	fields := res.Header.Fields()
	headers := make([]HeaderField, 0, len(fields))
	for _, f := range fields {
		headers = append(headers, HeaderField{Name: f.Name, Value: f.Value})
	}

	report := Report{
		URL:       res.Target.URL(),
		Proto:     res.Status.Proto,
		Status:    res.Status.Code,
		Reason:    res.Status.Reason,
		Redirects: res.Hops,
		ElapsedMS: res.Elapsed.Milliseconds(),
		Headers:   headers,
		Body:      string(res.Body),
	}

	enc := json.NewEncoder(s.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
