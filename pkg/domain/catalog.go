package domain

// Squad is a named backing resource group offered by a squad step.
type Squad struct {
	Key  string `yaml:"key" json:"key"`
	Name string `yaml:"name" json:"name"`
	ID   string `yaml:"id" json:"id"`
}

// Catalog holds the immutable squad catalogs in display order.
type Catalog struct {
	Internal []Squad `yaml:"internal" json:"internal"`
	External []Squad `yaml:"external" json:"external"`
}

// InternalSquad looks up an internal squad by key.
func (c Catalog) InternalSquad(key string) (Squad, bool) {
	return find(c.Internal, key)
}

// ExternalSquad looks up an external squad by key.
func (c Catalog) ExternalSquad(key string) (Squad, bool) {
	return find(c.External, key)
}

// ResolveInternal maps selected keys to backing ids in catalog order.
// Keys missing from the catalog are dropped.
func (c Catalog) ResolveInternal(selected []string) []string {
	ids := make([]string, 0, len(selected))
	for _, sq := range c.Internal {
		for _, key := range selected {
			if key == sq.Key {
				ids = append(ids, sq.ID)
				break
			}
		}
	}
	return ids
}

func find(squads []Squad, key string) (Squad, bool) {
	for _, sq := range squads {
		if sq.Key == key {
			return sq, true
		}
	}
	return Squad{}, false
}
