/*
Package dsl describes graphs for the Ripple workspace, either with a fluent
Go builder or as YAML/JSON fixture documents.

Fixture nodes are named by local labels. Labels only exist inside the
fixture: applying a fixture to a graph allocates fresh node IDs and returns
the label-to-ID mapping, so the same fixture can be loaded into any store.

	b := dsl.New("diamond")
	b.Node("a").At(120, 80).Link("b", "c")
	b.Node("b").Link("d")
	b.Node("c").Link("d")
	b.Node("d")
	b.StartAt("a")

	fx, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

The equivalent document:

	name: diamond
	start: a
	nodes:
	  - id: a
	    x: 120
	    y: 80
	    links: [b, c]
	  - id: b
	    links: [d]
	  - id: c
	    links: [d]
	  - id: d
*/
package dsl
