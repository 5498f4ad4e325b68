// SPDX-License-Identifier: GPL-3.0-or-later

package funcapi

// ParamOption is one choice of a required param. Column maps the option to a
// table column id and is not serialized.
type ParamOption struct {
	ID      string
	Name    string
	Default bool
	Sort    *FieldSort
	Column  string
}

// ParamConfig is a single choice required param.
type ParamConfig struct {
	ID         string
	Name       string
	Help       string
	Options    []ParamOption
	UniqueView bool
}

// RequiredParam returns the param in the required_params wire format.
func (p ParamConfig) RequiredParam() map[string]any {
	def, _ := p.defaultOption()

	options := make([]map[string]any, 0, len(p.Options))
	for _, opt := range p.Options {
		o := map[string]any{
			"id":   opt.ID,
			"name": opt.Name,
		}
		if opt.Sort != nil {
			o["sort"] = opt.Sort.String()
		}
		if opt.ID == def.ID {
			o["defaultSelected"] = true
		}
		options = append(options, o)
	}

	out := map[string]any{
		"id":      p.ID,
		"name":    p.Name,
		"type":    "select",
		"options": options,
	}
	if p.Help != "" {
		out["help"] = p.Help
	}
	if p.UniqueView {
		out["unique_view"] = true
	}
	return out
}

// Resolve returns the option with the given id. An empty or unknown id
// resolves to the default option.
func (p ParamConfig) Resolve(id string) (ParamOption, bool) {
	for _, opt := range p.Options {
		if id != "" && opt.ID == id {
			return opt, true
		}
	}
	return p.defaultOption()
}

// defaultOption returns the first option marked Default, the first option when none is.
func (p ParamConfig) defaultOption() (ParamOption, bool) {
	for _, opt := range p.Options {
		if opt.Default {
			return opt, true
		}
	}
	if len(p.Options) == 0 {
		return ParamOption{}, false
	}
	return p.Options[0], true
}

// ResolvedParams maps a param id to its selected option.
type ResolvedParams map[string]ParamOption

// ResolveParams resolves the values given by param id. Params without options are left out.
func ResolveParams(cfgs []ParamConfig, values map[string]string) ResolvedParams {
	resolved := make(ResolvedParams, len(cfgs))
	for _, cfg := range cfgs {
		if opt, ok := cfg.Resolve(values[cfg.ID]); ok {
			resolved[cfg.ID] = opt
		}
	}
	return resolved
}

// Get returns the id of the selected option.
func (p ResolvedParams) Get(id string) string {
	return p[id].ID
}

// Column returns the column the selected option maps to, the option id when
// it has no mapping.
func (p ResolvedParams) Column(id string) string {
	opt, ok := p[id]
	if !ok {
		return ""
	}
	if opt.Column != "" {
		return opt.Column
	}
	return opt.ID
}
