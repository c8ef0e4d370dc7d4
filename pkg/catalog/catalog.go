// Package catalog loads the table of bodies and their J2000 orbital elements.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
)

//go:embed j2000.yaml
var defaultCatalog []byte

// ErrUnknownBody is returned by Lookup for names not in the catalog.
var ErrUnknownBody = errorsmod.Register(orbital.Codespace, 4, "unknown body")

// Entry is one catalog row as written in YAML.
type Entry struct {
	Name                string  `yaml:"name"`
	SemiMajorAxisAU     float64 `yaml:"semi_major_axis_au"`
	InclinationDeg      float64 `yaml:"inclination_deg"`
	ArgPeriapsisDeg     float64 `yaml:"arg_periapsis_deg"`
	Eccentricity        float64 `yaml:"eccentricity"`
	AscendingNodeDeg    float64 `yaml:"ascending_node_deg"`
	MeanAnomalyDeg      float64 `yaml:"mean_anomaly_deg"`
	SiderealPeriodYears float64 `yaml:"sidereal_period_years"`
}

type document struct {
	EpochJD float64 `yaml:"epoch_jd"`
	Bodies  []Entry `yaml:"bodies"`
}

// Catalog is an ordered, validated set of bodies.
type Catalog struct {
	EpochJD float64
	bodies  []*orbital.OrbitalElements
	index   map[string]int
}

// Default returns the embedded J2000 planet table.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Load parses and validates a YAML catalog. An invalid entry fails the whole load.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(doc.EpochJD, doc.Bodies)
}

// New builds a catalog from entries, converting each into orbital elements.
func New(epochJD float64, entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog has no bodies")
	}

	c := &Catalog{
		EpochJD: epochJD,
		bodies:  make([]*orbital.OrbitalElements, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		key := strings.ToLower(name)
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", name)
		}

		oe, err := orbital.NewOrbitalElements(name, e.SemiMajorAxisAU, e.InclinationDeg, e.ArgPeriapsisDeg,
			e.Eccentricity, e.AscendingNodeDeg, e.MeanAnomalyDeg, e.SiderealPeriodYears)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "catalog entry %q", name)
		}

		c.index[key] = len(c.bodies)
		c.bodies = append(c.bodies, oe)
	}
	return c, nil
}

// Bodies returns the bodies in catalog order.
func (c *Catalog) Bodies() []*orbital.OrbitalElements {
	out := make([]*orbital.OrbitalElements, len(c.bodies))
	copy(out, c.bodies)
	return out
}

// Names returns body names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.bodies))
	for i, b := range c.bodies {
		names[i] = b.Name()
	}
	return names
}

// Len returns the number of bodies
func (c *Catalog) Len() int { return len(c.bodies) }

// Lookup finds a body by case-insensitive name.
func (c *Catalog) Lookup(name string) (*orbital.OrbitalElements, error) {
	i, ok := c.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errorsmod.Wrapf(ErrUnknownBody, "%q (known: %s)", name, strings.Join(c.Names(), ", "))
	}
	return c.bodies[i], nil
}

// Select returns the named bodies in catalog order, or all bodies when names is empty.
func (c *Catalog) Select(names []string) ([]*orbital.OrbitalElements, error) {
	if len(names) == 0 {
		return c.Bodies(), nil
	}
	want := make(map[int]bool, len(names))
	for _, n := range names {
		oe, err := c.Lookup(n)
		if err != nil {
			return nil, err
		}
		want[c.index[strings.ToLower(oe.Name())]] = true
	}
	out := make([]*orbital.OrbitalElements, 0, len(want))
	for i, b := range c.bodies {
		if want[i] {
			out = append(out, b)
		}
	}
	return out, nil
}
