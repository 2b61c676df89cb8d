package stats

// DeriveRule folds raw source stats into one derived stat.
// Sources that are not tracked are left out of the combination; when none
// are tracked the rule does not apply and the target is not displayed.
type DeriveRule struct {
	Target  Stat
	Sources []Stat
	Combine func(values []int64) int64
}

// DeriveRules is evaluated once per Layout
var DeriveRules = []DeriveRule{
	{
		Target:  CreepScore,
		Sources: []Stat{TotalMinionsKilled, NeutralMinionsKilled},
		Combine: Sum,
	},
}

// Sum adds all values
func Sum(values []int64) int64 {
	var total int64
	for _, v := range values {
		total += v
	}
	return total
}

// boundRule is a DeriveRule restricted to the tracked sources
type boundRule struct {
	target  Stat
	sources []Stat
	combine func(values []int64) int64
}

func bindRules(rules []DeriveRule, tracked [numStats]bool) []boundRule {
	var bound []boundRule
	for _, rule := range rules {
		var sources []Stat
		for _, s := range rule.Sources {
			if tracked[s] {
				sources = append(sources, s)
			}
		}
		if len(sources) == 0 {
			continue
		}
		bound = append(bound, boundRule{target: rule.Target, sources: sources, combine: rule.Combine})
	}
	return bound
}

// apply folds the sources into the target and drops them from the record
func (r boundRule) apply(p *PlayerRecord) error {
	values := make([]int64, 0, len(r.sources))
	for _, s := range r.sources {
		v, ok := p.Stat(s)
		if !ok {
			return errMissingStat(p, s)
		}
		values = append(values, v)
	}
	p.set(r.target, r.combine(values))
	for _, s := range r.sources {
		p.clear(s)
	}
	return nil
}
