package query

import (
	"fmt"
	"slices"
)

// AddQuery returns a snapshot with q appended to the paint order.
func (c *Config) AddQuery(q Query) (*Config, error) {
	if !ValidName(q.Name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, q.Name)
	}
	if _, ok := c.Queries[q.Name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, q.Name)
	}
	n := c.Clone()
	n.Queries[q.Name] = q.clone()
	n.Order = append(n.Order, q.Name)
	return n.Normalize(), nil
}

// UpdateQuery replaces an existing query, keeping its position.
func (c *Config) UpdateQuery(q Query) (*Config, error) {
	if _, ok := c.Queries[q.Name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, q.Name)
	}
	n := c.Clone()
	n.Queries[q.Name] = q.clone()
	return n.Normalize(), nil
}

// DeleteQuery removes a query and its order entry.
func (c *Config) DeleteQuery(name string) (*Config, error) {
	if _, ok := c.Queries[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, name)
	}
	n := c.Clone()
	delete(n.Queries, name)
	n.Order = slices.DeleteFunc(n.Order, func(s string) bool { return s == name })
	return n, nil
}

// ToggleQuery flips a query's Enabled flag.
func (c *Config) ToggleQuery(name string) (*Config, error) {
	q, ok := c.Queries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, name)
	}
	n := c.Clone()
	q = n.Queries[name]
	q.Enabled = !q.Enabled
	n.Queries[name] = q
	return n, nil
}

// ToggleTag flips TagEnabled for every query carrying tag. The new state is the
// inverse of the first tagged query in paint order, so mixed groups converge.
func (c *Config) ToggleTag(tag string) (*Config, error) {
	var first *Query
	for _, q := range c.Ordered() {
		if q.Tag == tag {
			first = &q
			break
		}
	}
	if first == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	return c.SetTagEnabled(tag, !first.TagEnabled), nil
}

// SetTagEnabled sets TagEnabled for every query carrying tag.
func (c *Config) SetTagEnabled(tag string, on bool) *Config {
	n := c.Clone()
	for k, q := range n.Queries {
		if q.Tag == tag {
			q.TagEnabled = on
			n.Queries[k] = q
		}
	}
	return n
}

// RenameTag moves every query in from to the tag to. Renaming onto an existing
// tag merges the groups.
func (c *Config) RenameTag(from, to string) (*Config, error) {
	if to == "" {
		return nil, fmt.Errorf("rename tag %q: empty name", from)
	}
	if !slices.Contains(c.Tags(), from) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, from)
	}
	n := c.Clone()
	for k, q := range n.Queries {
		if q.Tag == from {
			q.Tag = to
			n.Queries[k] = q
		}
	}
	return n, nil
}

// DeleteTag removes the tag and every query carrying it.
func (c *Config) DeleteTag(tag string) (*Config, error) {
	if !slices.Contains(c.Tags(), tag) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	n := c.Clone()
	for k, q := range n.Queries {
		if q.Tag == tag {
			delete(n.Queries, k)
		}
	}
	n.Order = slices.DeleteFunc(n.Order, func(s string) bool {
		_, ok := n.Queries[s]
		return !ok
	})
	return n, nil
}

// SetSwitch sets the global static-highlighting switch.
func (c *Config) SetSwitch(on bool) *Config {
	n := c.Clone()
	n.Switch = on
	return n
}

// WithSelection replaces the selection settings.
func (c *Config) WithSelection(s SelectionConfig) *Config {
	n := c.Clone()
	n.Selection = s
	n.Selection.IgnoredWords = slices.Clone(s.IgnoredWords)
	return n.Normalize()
}
