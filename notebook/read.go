package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	mimeTextPlain = "text/plain"
	minNBFormat   = 4
)

// multiline is a nbformat string, stored either as a string or a list of lines
type multiline string

func (m *multiline) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var lines []string
		if err := json.Unmarshal(b, &lines); err != nil {
			return err
		}
		*m = multiline(strings.Join(lines, ""))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*m = multiline(s)
	return nil
}

type nbOutput struct {
	OutputType string                     `json:"output_type"`
	Name       string                     `json:"name"`
	Text       multiline                  `json:"text"`
	Data       map[string]json.RawMessage `json:"data"`
}

type nbCell struct {
	CellType string     `json:"cell_type"`
	Outputs  []nbOutput `json:"outputs"`
}

type nbDocument struct {
	NBFormat *int     `json:"nbformat"`
	Cells    []nbCell `json:"cells"`
}

// Read decodes an executed nbformat v4 notebook into an artifact
func Read(r io.Reader) (*Artifact, error) {
	var doc nbDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("notebook: decode: %w", err)
	}
	if doc.NBFormat == nil {
		return nil, fmt.Errorf("notebook: missing nbformat version")
	}
	if *doc.NBFormat < minNBFormat {
		return nil, fmt.Errorf("notebook: unsupported nbformat %d", *doc.NBFormat)
	}

	a := new(Artifact)
	for _, c := range doc.Cells {
		if c.CellType != "code" {
			continue
		}
		for _, o := range c.Outputs {
			out, err := convertOutput(&o)
			if err != nil {
				return nil, err
			}
			a.Outputs = append(a.Outputs, out)
		}
	}
	return a, nil
}

// Parse is Read on a byte slice
func Parse(b []byte) (*Artifact, error) {
	return Read(bytes.NewReader(b))
}

func convertOutput(o *nbOutput) (Output, error) {
	switch o.OutputType {
	case "execute_result", "display_data":
		raw, ok := o.Data[mimeTextPlain]
		if !ok {
			return Output{Kind: KindOther}, nil
		}
		var text multiline
		if err := json.Unmarshal(raw, &text); err != nil {
			return Output{}, fmt.Errorf("notebook: %s %s: %w", o.OutputType, mimeTextPlain, err)
		}
		return Output{Kind: KindResult, Text: string(text)}, nil

	case "stream":
		switch o.Name {
		case "stdout":
			return Output{Kind: KindStdout, Text: string(o.Text)}, nil
		case "stderr":
			return Output{Kind: KindStderr, Text: string(o.Text)}, nil
		}
	}
	return Output{Kind: KindOther}, nil
}
