package dataprocessing

import (
	"fmt"
)

// Merge left-joins each table onto base by Country, in order. Base rows keep their
// order; a base row matching several right rows is repeated once per match, and an
// unmatched row gets nulls. Blank keys never match. A right column whose name is
// already taken is renamed <name>_<table name>.
func Merge(base *Table, others ...*Table) (*Table, error) {
	if base == nil {
		return nil, fmt.Errorf("merge: base table is nil")
	}
	if !base.Has(KeyColumn) {
		return nil, fmt.Errorf("merge: table %s has no %s column", base.Name, KeyColumn)
	}

	merged, err := NewTable("merged", base.Columns()...)
	if err != nil {
		return nil, err
	}
	for _, right := range others {
		if right == nil {
			continue
		}
		next, err := leftJoin(merged, right)
		if err != nil {
			return nil, err
		}
		merged = next
	}
	return merged, nil
}

func leftJoin(left, right *Table) (*Table, error) {
	rightKey, ok := right.Column(KeyColumn)
	if !ok {
		return nil, fmt.Errorf("merge: table %s has no %s column", right.Name, KeyColumn)
	}
	leftKey, _ := left.Column(KeyColumn)

	matches := make(map[string][]int, rightKey.Len())
	for i, k := range rightKey.Strings {
		if k == "" {
			continue
		}
		matches[k] = append(matches[k], i)
	}

	var leftIdx, rightIdx []int
	for i, k := range leftKey.Strings {
		rows := matches[k]
		if k == "" || len(rows) == 0 {
			leftIdx = append(leftIdx, i)
			rightIdx = append(rightIdx, -1)
			continue
		}
		for _, j := range rows {
			leftIdx = append(leftIdx, i)
			rightIdx = append(rightIdx, j)
		}
	}

	out := &Table{Name: left.Name, index: make(map[string]int, left.Width()+right.Width())}
	for _, c := range left.columns {
		if err := out.AddColumn(c.take(leftIdx)); err != nil {
			return nil, err
		}
	}
	for _, c := range right.columns {
		if c.Name == KeyColumn {
			continue
		}
		col := c.take(rightIdx)
		if out.Has(col.Name) {
			col.Name = col.Name + "_" + right.Name
		}
		if err := out.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}
