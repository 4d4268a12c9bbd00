// Package seed loads watershed polygons from GeoJSON files into a polygon store, backfilling
// missing administrative codes with the hierarchy assigner.
package seed

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source describes one GeoJSON file and which feature properties carry which field.
type Source struct {
	Path                string `yaml:"path"`
	NameProperty        string `yaml:"name_property"`
	IDProperty          string `yaml:"id_property"`
	SecondaryIDProperty string `yaml:"secondary_id_property"`
	ProvinsiProperty    string `yaml:"provinsi_property"`
	KabKotaProperty     string `yaml:"kab_kota_property"`
	KecamatanProperty   string `yaml:"kecamatan_property"`
	KelDesProperty      string `yaml:"kel_des_property"`
	// DefaultProvinsi applies when a feature carries no province code and none can be derived.
	DefaultProvinsi string `yaml:"default_provinsi"`
}

type Manifest struct {
	Sources []Source `yaml:"sources"`
}

func (s *Source) applyDefaults() {
	def := func(v *string, d string) {
		if strings.TrimSpace(*v) == "" {
			*v = d
		}
	}
	def(&s.NameProperty, "name")
	def(&s.IDProperty, "das_id")
	def(&s.SecondaryIDProperty, "objectid")
	def(&s.ProvinsiProperty, "provinsi_code")
	def(&s.KabKotaProperty, "kab_kota_code")
	def(&s.KecamatanProperty, "kecamatan_code")
	def(&s.KelDesProperty, "kel_des_code")
}

// LoadManifest parses a YAML manifest. Relative source paths resolve against the manifest's
// directory.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Sources) == 0 {
		return nil, fmt.Errorf("manifest %s: no sources", path)
	}
	base := filepath.Dir(path)
	for i := range m.Sources {
		s := &m.Sources[i]
		if s.Path == "" {
			return nil, fmt.Errorf("manifest %s: source %d has no path", path, i)
		}
		if !filepath.IsAbs(s.Path) {
			s.Path = filepath.Join(base, s.Path)
		}
		s.applyDefaults()
	}
	return &m, nil
}

// DirManifest lists every *.geojson file in dir with default property names, in name order.
func DirManifest(dir string) (*Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read polygon dir: %w", err)
	}
	var m Manifest
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(strings.ToLower(ent.Name()), ".geojson") {
			continue
		}
		s := Source{Path: filepath.Join(dir, ent.Name())}
		s.applyDefaults()
		m.Sources = append(m.Sources, s)
	}
	sort.Slice(m.Sources, func(i, j int) bool { return m.Sources[i].Path < m.Sources[j].Path })
	return &m, nil
}

// ResolveManifest prefers dir/manifest.yaml and falls back to DirManifest.
func ResolveManifest(dir string) (*Manifest, error) {
	p := filepath.Join(dir, "manifest.yaml")
	if _, err := os.Stat(p); err == nil {
		return LoadManifest(p)
	}
	return DirManifest(dir)
}
