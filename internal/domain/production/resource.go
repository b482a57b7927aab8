package production

import (
	"fmt"
	"sort"
	"strings"
)

// ResourceKind distinguishes physical items from elements (fluids, gases)
type ResourceKind string

const (
	// ResourceKindItem is a discrete item carried on belts or in inventories
	ResourceKindItem ResourceKind = "item"

	// ResourceKindElement is a fluid or gas moved through pipes
	ResourceKindElement ResourceKind = "element"
)

// ParseResourceKind converts a string to a ResourceKind.
// An empty string defaults to item.
func ParseResourceKind(s string) (ResourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ResourceKindItem):
		return ResourceKindItem, nil
	case string(ResourceKindElement):
		return ResourceKindElement, nil
	default:
		return "", fmt.Errorf("invalid resource kind: %q", s)
	}
}

// ResourceKey identifies a resource. Two resources are equal when their keys are equal.
type ResourceKey struct {
	Kind ResourceKind
	ID   string
}

// ItemKey builds the key of an item resource
func ItemKey(id string) ResourceKey {
	return ResourceKey{Kind: ResourceKindItem, ID: id}
}

// ElementKey builds the key of an element resource
func ElementKey(id string) ResourceKey {
	return ResourceKey{Kind: ResourceKindElement, ID: id}
}

// ParseResourceKey parses the String form of a key. A bare id is an item.
func ParseResourceKey(s string) (ResourceKey, error) {
	kindPart, id, found := strings.Cut(s, ":")
	if !found {
		kindPart, id = "", s
	}
	if id == "" {
		return ResourceKey{}, fmt.Errorf("invalid resource key: %q", s)
	}
	kind, err := ParseResourceKind(kindPart)
	if err != nil {
		return ResourceKey{}, err
	}
	return ResourceKey{Kind: kind, ID: id}, nil
}

func (k ResourceKey) String() string {
	return string(k.Kind) + ":" + k.ID
}

// Less orders keys by kind, then id
func (k ResourceKey) Less(other ResourceKey) bool {
	if k.Kind != other.Kind {
		return k.Kind < other.Kind
	}
	return k.ID < other.ID
}

// SortKeys sorts keys in place and returns them
func SortKeys(keys []ResourceKey) []ResourceKey {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// SortedKeys returns the keys of a resource-keyed map in deterministic order
func SortedKeys[V any](m map[ResourceKey]V) []ResourceKey {
	keys := make([]ResourceKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return SortKeys(keys)
}

// Resource is an immutable value object describing an item or element
type Resource struct {
	kind ResourceKind
	id   string
	name string
}

// NewResource creates a resource. Name falls back to the id when empty.
func NewResource(kind ResourceKind, id, name string) Resource {
	if name == "" {
		name = id
	}
	return Resource{kind: kind, id: id, name: name}
}

func (r Resource) Kind() ResourceKind { return r.kind }
func (r Resource) ID() string         { return r.id }
func (r Resource) Name() string       { return r.name }

// Key returns the identity of the resource
func (r Resource) Key() ResourceKey {
	return ResourceKey{Kind: r.kind, ID: r.id}
}

// Equal compares by identity only; display names are ignored
func (r Resource) Equal(other Resource) bool {
	return r.Key() == other.Key()
}

func (r Resource) String() string {
	return r.name
}
