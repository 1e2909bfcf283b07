package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

// domainValue is a --domain flag restricted to the catalog domains.
type domainValue string

var _ pflag.Value = (*domainValue)(nil)

func (d *domainValue) String() string { return string(*d) }

func (d *domainValue) Type() string { return "domain" }

func (d *domainValue) Set(s string) error {
	for name := range domain.ValidDomains {
		if strings.EqualFold(name, s) {
			*d = domainValue(name)
			return nil
		}
	}
	return fmt.Errorf("unknown domain %q (want %s)", s, strings.Join(domainNames(), ", "))
}

func domainNames() []string {
	names := make([]string, 0, len(domain.ValidDomains))
	for name := range domain.ValidDomains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func addDomainFlag(fs *pflag.FlagSet, d *domainValue) {
	fs.VarP(d, "domain", "d", "only users of this catalog domain ("+strings.Join(domainNames(), ", ")+")")
}

func addJSONFlag(fs *pflag.FlagSet, p *bool) {
	fs.BoolVar(p, "json", false, "print JSON instead of formatted text")
}

func addBackendsFlag(fs *pflag.FlagSet, p *[]string) {
	fs.StringSliceVarP(p, "backends", "b", nil, "comma-separated backend names to run (default: all)")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput reads path, or stdin when path is "-" or empty.
func readInput(stdin io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
