package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"propertychat/internal/model"
)

// Catalog source files, merged by id in this order (later files override earlier keys)
const (
	BasicsFile          = "property_basics.json"
	CharacteristicsFile = "property_characteristics.json"
	ImagesFile          = "property_images.json"
)

// Catalog is the read-only property list loaded at startup
type Catalog struct {
	properties []model.Property
	byID       map[int64]int
}

// NewCatalog wraps an already merged property list
func NewCatalog(props []model.Property) *Catalog {
	c := &Catalog{
		properties: props,
		byID:       make(map[int64]int, len(props)),
	}
	for i, p := range props {
		c.byID[p.ID] = i
	}
	return c
}

type rawRecord map[string]json.RawMessage

// LoadCatalog reads the three catalog files concurrently and merges them by id.
// The basics file is required; missing characteristics or images are tolerated.
func LoadCatalog(ctx context.Context, dir string) (*Catalog, error) {
	files := []string{BasicsFile, CharacteristicsFile, ImagesFile}
	records := make([][]rawRecord, len(files))

	g, _ := errgroup.WithContext(ctx)
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			recs, err := readRecords(filepath.Join(dir, name))
			if err != nil {
				if i > 0 && errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			records[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	props, err := mergeRecords(records[0], records[1:]...)
	if err != nil {
		return nil, err
	}
	return NewCatalog(props), nil
}

func readRecords(path string) ([]rawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var recs []rawRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return recs, nil
}

func recordID(r rawRecord) (int64, error) {
	raw, ok := r["id"]
	if !ok {
		return 0, errors.New("record without id")
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, fmt.Errorf("invalid id %s: %w", raw, err)
	}
	return id, nil
}

// mergeRecords overlays extra records onto basics by id, keeping basics order
func mergeRecords(basics []rawRecord, extras ...[]rawRecord) ([]model.Property, error) {
	overlays := make([]map[int64]rawRecord, len(extras))
	for i, recs := range extras {
		overlays[i] = make(map[int64]rawRecord, len(recs))
		for _, r := range recs {
			id, err := recordID(r)
			if err != nil {
				return nil, err
			}
			overlays[i][id] = r
		}
	}

	props := make([]model.Property, 0, len(basics))
	for _, base := range basics {
		id, err := recordID(base)
		if err != nil {
			return nil, err
		}

		merged := rawRecord{}
		for k, v := range base {
			merged[k] = v
		}
		for _, overlay := range overlays {
			for k, v := range overlay[id] {
				merged[k] = v
			}
		}

		data, err := json.Marshal(merged)
		if err != nil {
			return nil, err
		}
		var p model.Property
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("property %d: %w", id, err)
		}
		if p.Image == "" && len(p.Images) > 0 {
			p.Image = p.Images[0]
		}
		props = append(props, p)
	}
	return props, nil
}

// All returns the catalog in load order. Callers must not modify it.
func (c *Catalog) All() []model.Property {
	return c.properties
}

// Len returns the number of properties
func (c *Catalog) Len() int {
	return len(c.properties)
}

// ByID looks up a single property
func (c *Catalog) ByID(id int64) (model.Property, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Property{}, false
	}
	return c.properties[i], true
}

// ByIDs resolves ids in the given order, skipping unknown ones
func (c *Catalog) ByIDs(ids []int64) []model.Property {
	out := make([]model.Property, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.ByID(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// MissingLocations returns the labels that match no property location
func (c *Catalog) MissingLocations(labels []string) []string {
	var missing []string
	for _, label := range labels {
		found := false
		for i := range c.properties {
			if c.properties[i].InLocation(label) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, label)
		}
	}
	return missing
}

// Locations returns the distinct property locations, sorted
func (c *Catalog) Locations() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.properties {
		if _, ok := seen[p.Location]; ok || p.Location == "" {
			continue
		}
		seen[p.Location] = struct{}{}
		out = append(out, p.Location)
	}
	sort.Strings(out)
	return out
}
