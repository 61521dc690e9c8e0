// Package symbols implements the flat name to value table that set writes and
// identifiers read.
package symbols

import (
	"github.com/google/btree"
	"github.com/pontaoski/tinyscript/errors"
	"github.com/pontaoski/tinyscript/value"
)

const degree = 8

type binding struct {
	name string
	val  value.Value
}

func (b binding) Less(than btree.Item) bool {
	return b.name < than.(binding).name
}

// Table has no scoping. It is not safe for concurrent use.
type Table struct {
	tree *btree.BTree
}

func New() *Table {
	return &Table{tree: btree.New(degree)}
}

// Set binds name to v, replacing any earlier binding.
func (t *Table) Set(name string, v value.Value) {
	t.tree.ReplaceOrInsert(binding{name: name, val: v})
}

func (t *Table) Lookup(name string) (value.Value, bool) {
	item := t.tree.Get(binding{name: name})
	if item == nil {
		return value.Value{}, false
	}
	return item.(binding).val, true
}

// Get fails with an UndefinedSymbol runtime error when name is unbound.
func (t *Table) Get(name string) (value.Value, error) {
	v, ok := t.Lookup(name)
	if !ok {
		return value.Value{}, errors.NewRuntimeError(errors.UndefinedSymbol, "Symbol %s not defined", name)
	}
	return v, nil
}

func (t *Table) Len() int {
	return t.tree.Len()
}

// Each visits bindings in name order until fn returns false.
func (t *Table) Each(fn func(name string, v value.Value) bool) {
	t.tree.Ascend(func(i btree.Item) bool {
		b := i.(binding)
		return fn(b.name, b.val)
	})
}

// Snapshot copies the table into a plain map suitable for encoders.
func (t *Table) Snapshot() map[string]interface{} {
	ret := make(map[string]interface{}, t.Len())
	t.Each(func(name string, v value.Value) bool {
		ret[name] = v.Interface()
		return true
	})
	return ret
}
