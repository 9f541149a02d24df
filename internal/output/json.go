package output

import (
	"encoding/json"

	"github.com/prolifel/ceker/internal/core"
)

// JSONFormatter renders outcomes as JSON.
type JSONFormatter struct {
	Indent bool
}

type jsonEnvelope struct {
	URL string `json:"url"`
	*core.CheckOutcome
}

// FormatOutcome renders one check outcome as JSON.
func (f *JSONFormatter) FormatOutcome(outcome *core.CheckOutcome, url string) (string, error) {
	if outcome == nil {
		return "", nil
	}

	envelope := jsonEnvelope{URL: url, CheckOutcome: outcome}

	var (
		data []byte
		err  error
	)
	if f.Indent {
		data, err = json.MarshalIndent(envelope, "", "  ")
	} else {
		data, err = json.Marshal(envelope)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
