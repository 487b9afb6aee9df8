package testutil

import (
	"github.com/arthur-debert/bcforge/pkg/metadata"
)

// CollectionBuilder assembles a metadata.Collection in a readable way.
type CollectionBuilder struct {
	c metadata.Collection
}

// NewCollection starts an empty collection.
func NewCollection() *CollectionBuilder {
	return &CollectionBuilder{}
}

// Object adds a leaf object.
func (b *CollectionBuilder) Object(path string) *CollectionBuilder {
	b.c.Objects = append(b.c.Objects, metadata.Object{AbsPath: path, Name: path})
	return b
}

// Target adds a link target and its dependencies.
func (b *CollectionBuilder) Target(path string, deps ...string) *CollectionBuilder {
	b.c.Scripts = append(b.c.Scripts, metadata.LinkScript{
		AbsPath: path + ".link.txt",
		Target: metadata.Target{
			Name:         path,
			AbsPath:      path,
			Dependencies: deps,
		},
	})
	return b
}

// Compile adds a raw compile command.
func (b *CollectionBuilder) Compile(command string) *CollectionBuilder {
	b.c.Compile = append(b.c.Compile, command)
	return b
}

// Build returns the collection.
func (b *CollectionBuilder) Build() *metadata.Collection {
	c := b.c
	return &c
}

// LibScenario is the two-library example: liba links a.o, libb links a.o
// and liba.
func LibScenario() *metadata.Collection {
	return NewCollection().
		Object("/src/a.o").
		Object("/src/b.o").
		Target("/out/liba", "/src/a.o").
		Target("/out/libb", "/src/a.o", "/out/liba").
		Build()
}
