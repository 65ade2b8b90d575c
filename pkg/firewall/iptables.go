package firewall

import (
	"Netlab/api"

	"github.com/coreos/go-iptables/iptables"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// IPTables drives the iptables binary of the calling network namespace.
// Callers that configure a node run it inside that node's namespace.
type IPTables struct {
	ipt *iptables.IPTables
}

func NewIPTables() (*IPTables, error) {
	ipt, err := iptables.NewWithProtocol(iptables.ProtocolIPv4)
	if err != nil {
		return nil, errors.Wrap(err, "failed to locate iptables")
	}
	return &IPTables{ipt: ipt}, nil
}

func (f *IPTables) Flush(tables ...string) error {
	for _, table := range tables {
		chains, err := f.ipt.ListChains(table)
		if err != nil {
			return errors.Wrapf(err, "list chains of %s", table)
		}
		for _, chain := range chains {
			if err := f.ipt.ClearChain(table, chain); err != nil {
				return errors.Wrapf(err, "flush %s/%s", table, chain)
			}
		}
		for _, chain := range chains {
			if IsBuiltin(table, chain) {
				continue
			}
			if err := f.ipt.DeleteChain(table, chain); err != nil {
				return errors.Wrapf(err, "delete chain %s/%s", table, chain)
			}
			log.Debugf("deleted chain %s/%s", table, chain)
		}
	}
	return nil
}

func (f *IPTables) Append(r api.Rule) error {
	if err := f.ipt.Append(r.Table, r.Chain, r.Spec()...); err != nil {
		return errors.Wrapf(err, "append to %s/%s", r.Table, r.Chain)
	}
	return nil
}

func (f *IPTables) SetPolicy(table, chain, policy string) error {
	return errors.Wrapf(f.ipt.ChangePolicy(table, chain, policy), "set policy of %s/%s", table, chain)
}

func (f *IPTables) List(table, chain string) ([]string, error) {
	lines, err := f.ipt.List(table, chain)
	return lines, errors.Wrapf(err, "list %s/%s", table, chain)
}
