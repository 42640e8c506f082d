// Package sys holds the system descriptions that ship with sysdec.
package sys

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"bitreg/src/tools/sysdec"
)

//go:embed *.yaml
var files embed.FS

// Names lists the built in descriptions.
func Names() []string {
	entries, _ := fs.ReadDir(files, ".")
	var out []string
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(out)
	return out
}

// Load returns the built in description called name, e.g. "bcm2837".
func Load(name string) (*sysdec.DeviceDef, error) {
	fp, err := files.Open(strings.ToLower(name) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no built in description %q (have %s)", name, strings.Join(Names(), ", "))
	}
	defer fp.Close()
	return sysdec.Load(fp)
}

func BCM2837() *sysdec.DeviceDef {
	d, err := Load("bcm2837")
	if err != nil {
		panic(err)
	}
	return d
}
