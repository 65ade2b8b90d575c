package firewall

import (
	"fmt"
	"strings"
	"sync"

	"Netlab/api"
)

// Memory is a Filter that only keeps state in memory. It starts with the
// built-in chains of the filter and nat tables, all with an ACCEPT
// policy, which is what a fresh network namespace has.
type Memory struct {
	mu     sync.Mutex
	chains map[string]*chain // "table/chain"
}

type chain struct {
	policy string
	rules  [][]string
}

func NewMemory() *Memory {
	m := &Memory{chains: map[string]*chain{}}
	for table, chains := range builtin {
		for _, c := range chains {
			m.chains[table+"/"+c] = &chain{policy: api.TargetAccept}
		}
	}
	return m
}

// NewChain adds a user-defined chain, mostly to give Flush something to
// delete.
func (m *Memory) NewChain(table, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chains[table+"/"+name] = &chain{}
}

func (m *Memory) Flush(tables ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, table := range tables {
		if _, ok := builtin[table]; !ok {
			return fmt.Errorf("unknown table %q", table)
		}
		for key, c := range m.chains {
			t, name, _ := strings.Cut(key, "/")
			if t != table {
				continue
			}
			if IsBuiltin(t, name) {
				c.rules = nil
			} else {
				delete(m.chains, key)
			}
		}
	}
	return nil
}

func (m *Memory) Append(r api.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chains[r.Table+"/"+r.Chain]
	if !ok {
		return fmt.Errorf("no chain %s/%s", r.Table, r.Chain)
	}
	c.rules = append(c.rules, r.Spec())
	return nil
}

func (m *Memory) SetPolicy(table, name, policy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !IsBuiltin(table, name) {
		return fmt.Errorf("cannot set policy on %s/%s", table, name)
	}
	m.chains[table+"/"+name].policy = policy
	return nil
}

func (m *Memory) List(table, name string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chains[table+"/"+name]
	if !ok {
		return nil, fmt.Errorf("no chain %s/%s", table, name)
	}
	var out []string
	if c.policy != "" {
		out = append(out, fmt.Sprintf("-P %s %s", name, c.policy))
	} else {
		out = append(out, "-N "+name)
	}
	for _, r := range c.rules {
		out = append(out, fmt.Sprintf("-A %s %s", name, strings.Join(r, " ")))
	}
	return out, nil
}
