// Package firewall applies api.Rule records to a packet filter.
package firewall

import (
	"Netlab/api"
)

// Filter is the packet-filter state of one node.
type Filter interface {
	// Flush removes all rules and all user-defined chains of the given
	// tables. Built-in chain policies are left untouched.
	Flush(tables ...string) error
	Append(r api.Rule) error
	SetPolicy(table, chain, policy string) error
	// List returns a chain in iptables -S form, policy line first.
	List(table, chain string) ([]string, error)
}

var builtin = map[string][]string{
	api.TableFilter: {api.ChainInput, api.ChainForward, api.ChainOutput},
	api.TableNAT:    {api.ChainPrerouting, api.ChainInput, api.ChainOutput, api.ChainPostrouting},
}

// IsBuiltin reports whether chain is one of the kernel chains of table.
func IsBuiltin(table, chain string) bool {
	for _, c := range builtin[table] {
		if c == chain {
			return true
		}
	}
	return false
}

// Dump lists every built-in chain of the given tables.
func Dump(f Filter, tables ...string) (map[string][]string, error) {
	out := map[string][]string{}
	for _, t := range tables {
		for _, c := range builtin[t] {
			lines, err := f.List(t, c)
			if err != nil {
				return nil, err
			}
			out[t+"/"+c] = lines
		}
	}
	return out, nil
}
