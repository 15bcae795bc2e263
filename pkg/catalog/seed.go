package catalog

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// seedFile is the layout of a TOML seed catalog:
//
//	[[trip]]
//	code = "GALR210214"
//	name = "Gale Reef"
//	start = 2021-02-14T08:00:00Z
type seedFile struct {
	Trips []Trip `toml:"trip"`
}

// LoadSeedFile reads the trips listed in a TOML seed file.
func LoadSeedFile(path string) ([]Trip, error) {
	var seed seedFile
	md, err := toml.DecodeFile(path, &seed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		log.Warnf("Ignoring unknown keys in %s: %v", path, undecoded)
	}
	for i, t := range seed.Trips {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("seed file %s, trip #%d: %w", path, i+1, err)
		}
	}
	log.Debugf("Read %d trips from seed file %s", len(seed.Trips), path)
	return seed.Trips, nil
}

// Seed writes trips into store, replacing existing trips with the same code.
func Seed(store Store, trips []Trip) error {
	for _, t := range trips {
		if err := store.Put(t); err != nil {
			return fmt.Errorf("seeding trip %s: %w", t.Code, err)
		}
	}
	return nil
}
