// Copyright 2026 The Rolegate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rbac

import (
	"fmt"
	"sort"
)

// Permission is an atomic capability recognized by the system.
// ShortName is the canonical dot-delimited identifier (e.g. "orders.view")
// and is globally unique across the catalog.
type Permission struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
	ShortName   string `yaml:"short_name" json:"short_name"`
}

// ModuleGroup is one module's worth of permission declarations.
// Modules exist purely for organization; they have no effect on
// authorization decisions.
type ModuleGroup struct {
	Module      string       `yaml:"module" json:"module"`
	Permissions []Permission `yaml:"permissions" json:"permissions"`
}

// TenantConfig names the user attribute that carries the tenant identifier
// (e.g. "shop_id" or "organization_id") and the model it belongs to.
type TenantConfig struct {
	Field string `yaml:"field" json:"field"`
	Model string `yaml:"model" json:"model"`
}

// Config is the process-wide RBAC configuration. It is loaded once at
// startup and never mutated afterwards; the catalog and engine are built
// from it and passed explicitly to whatever needs them.
//
// Modules is an ordered slice rather than a map so that declaration order
// survives parsing and Catalog.All stays stable.
type Config struct {
	Modules []ModuleGroup `yaml:"modules" json:"modules"`
	Tenant  TenantConfig  `yaml:"tenant" json:"tenant"`
}

// Catalog is the authoritative set of valid permission identifiers,
// flattened from every module group in the configuration. It is immutable
// after construction and safe for unrestricted concurrent reads.
type Catalog struct {
	byShort     map[string]Permission
	byModule    map[string][]Permission
	moduleOrder []string
	all         []Permission
}

// NewCatalog builds a catalog from configuration. A short name declared
// twice, in the same module or across modules, is a construction error.
func NewCatalog(cfg Config) (*Catalog, error) {
	c := &Catalog{
		byShort:  make(map[string]Permission),
		byModule: make(map[string][]Permission),
	}

	for _, group := range cfg.Modules {
		if group.Module == "" {
			return nil, fmt.Errorf("rbac: module group without a name")
		}
		if _, seen := c.byModule[group.Module]; seen {
			return nil, fmt.Errorf("rbac: duplicate module %q", group.Module)
		}
		c.moduleOrder = append(c.moduleOrder, group.Module)
		for _, p := range group.Permissions {
			if p.ShortName == "" {
				return nil, fmt.Errorf("rbac: permission %q in module %q has no short name", p.Name, group.Module)
			}
			if _, dup := c.byShort[p.ShortName]; dup {
				return nil, fmt.Errorf("rbac: duplicate permission %q", p.ShortName)
			}
			c.byShort[p.ShortName] = p
			c.byModule[group.Module] = append(c.byModule[group.Module], p)
			c.all = append(c.all, p)
		}
	}

	return c, nil
}

// IsValid reports whether shortName names a permission in the catalog.
func (c *Catalog) IsValid(shortName string) bool {
	_, ok := c.byShort[shortName]
	return ok
}

// ValidateMany partitions the input into known and unknown identifiers.
// Duplicates collapse; every distinct input appears in exactly one side.
// Both sides come back sorted so the partition is deterministic regardless
// of input order.
func (c *Catalog) ValidateMany(shortNames []string) (valid, invalid []string) {
	seen := make(map[string]bool, len(shortNames))
	for _, name := range shortNames {
		if seen[name] {
			continue
		}
		seen[name] = true
		if c.IsValid(name) {
			valid = append(valid, name)
		} else {
			invalid = append(invalid, name)
		}
	}
	sort.Strings(valid)
	sort.Strings(invalid)
	return valid, invalid
}

// All returns every permission in stable order: module declaration order,
// then per-module declaration order. The returned slice is a copy.
func (c *Catalog) All() []Permission {
	out := make([]Permission, len(c.all))
	copy(out, c.all)
	return out
}

// ByModule returns the permissions declared under a module, in declaration
// order. An unknown module yields an empty slice, not an error.
func (c *Catalog) ByModule(module string) []Permission {
	perms := c.byModule[module]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// Modules returns the module keys in declaration order.
func (c *Catalog) Modules() []string {
	out := make([]string, len(c.moduleOrder))
	copy(out, c.moduleOrder)
	return out
}

// Len returns the number of permissions in the catalog.
func (c *Catalog) Len() int {
	return len(c.all)
}
