package sysdec

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML description. Unknown keys are errors so that a typo
// does not silently drop a register. The result has not been validated.
func Load(r io.Reader) (*DeviceDef, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var d DeviceDef
	if err := dec.Decode(&d); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("parsing description: empty document")
		}
		return nil, fmt.Errorf("parsing description: %w", err)
	}
	d.normalize()
	return &d, nil
}

func LoadFile(path string) (*DeviceDef, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	d, err := Load(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Marshal writes d back out as YAML.
func (d *DeviceDef) Marshal(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
