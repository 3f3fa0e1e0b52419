// SPDX-License-Identifier: MPL-2.0

package jarpack

import (
	"errors"
	"reflect"
	"testing"

	"miner-cli/pkg/jarsfile"
)

const resolverDoc = `
[jars.uri.definitions]
paper = "https://{host}/v2/projects/paper/versions/{version}/builds/{build}/downloads/{name}"
velocity = "https://{host}/v2/projects/velocity/versions/{version}/builds/{build}/downloads/{name}"
worldedit = "https://{host:bukkit}/download/{name}"
luckperms = "https://{host:bukkit}/download/{name}"

[jars.uri.special.hosts]
paper = "api.papermc.io"
velocity = "api.papermc.io"
bukkit = "dev.bukkit.org"

[jars.uri.special.names]
paper = "paper-{version}-{build}.jar"
velocity = "velocity-{version}-{build}.jar"
worldedit = "worldedit-bukkit.jar"
luckperms = "luckperms-bukkit.jar"
`

func newTestResolver(t *testing.T, doc string, opts ...Option) *Resolver {
	t.Helper()
	tree, err := jarsfile.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return NewResolver(tree, opts...)
}

func TestURLsConcreteName(t *testing.T) {
	r := newTestResolver(t, resolverDoc)
	jar := jarsfile.NewJarFile("paper", jarsfile.MustParseVersion("1.20.1"), "196", jarsfile.ServicePaper)

	urls, err := r.URLs(jar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{
		"paper": "https://api.papermc.io/v2/projects/paper/versions/1.20.1/builds/196/downloads/paper-1.20.1-196.jar",
	}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("URLs = %v, want %v", urls, want)
	}
}

func TestURLsIdempotent(t *testing.T) {
	r := newTestResolver(t, resolverDoc)
	jar := jarsfile.NewJarFile("worldedit", jarsfile.Unset(), "", "")

	first, err := r.URLs(jar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.URLs(jar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("resolution is not idempotent: %v vs %v", first, second)
	}
}

func TestURLsWildcardUnion(t *testing.T) {
	r := newTestResolver(t, resolverDoc)
	jar := jarsfile.NewJarFile("*", jarsfile.MustParseVersion("1.20.1"), "196", "")

	urls, err := r.URLs(jar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"paper", "velocity", "worldedit", "luckperms"} {
		if urls[name] == "" {
			t.Errorf("wildcard union missing %q: %v", name, urls)
		}
	}
	if len(urls) != 4 {
		t.Errorf("wildcard union has %d entries, want 4: %v", len(urls), urls)
	}
}

func TestURLsUnknownName(t *testing.T) {
	r := newTestResolver(t, resolverDoc)
	jar := jarsfile.NewJarFile("nosuchjar", jarsfile.Unset(), "", "")

	_, err := r.URLs(jar)
	if !errors.Is(err, jarsfile.ErrConfigKey) {
		t.Errorf("expected ErrConfigKey, got %v", err)
	}
}

func TestURLsReverseMatchedDefinition(t *testing.T) {
	// A version-qualified request like "worldedit-7.2" reverse-matches
	// the "worldedit" definition key.
	r := newTestResolver(t, resolverDoc)
	jar := jarsfile.NewJarFile("worldedit-7.2", jarsfile.Unset(), "", "")

	urls, err := r.URLs(jar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if urls["worldedit-7.2"] != "https://dev.bukkit.org/download/worldedit-bukkit.jar" {
		t.Errorf("URLs = %v", urls)
	}
}

func TestNamesExpanded(t *testing.T) {
	r := newTestResolver(t, resolverDoc)
	jar := jarsfile.NewJarFile("paper", jarsfile.MustParseVersion("1.20.1"), "196", jarsfile.ServicePaper)

	names, err := r.Names(jar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names["paper"] != "paper-1.20.1-196.jar" {
		t.Errorf("Names = %v", names)
	}
}

func TestNamesMissingIsEmpty(t *testing.T) {
	r := newTestResolver(t, resolverDoc)
	names, err := r.Names(jarsfile.NewJarFile("nosuchjar", jarsfile.Unset(), "", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected empty mapping, got %v", names)
	}
}

func TestSingleHappyPath(t *testing.T) {
	r := newTestResolver(t, resolverDoc)
	jar := jarsfile.NewJarFile("worldedit", jarsfile.Unset(), "", "")

	url, name, err := r.Single(jar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://dev.bukkit.org/download/worldedit-bukkit.jar" {
		t.Errorf("url = %q", url)
	}
	if name != "worldedit-bukkit.jar" {
		t.Errorf("name = %q", name)
	}
}

func TestSingleAmbiguousDefinitions(t *testing.T) {
	// Two distinct candidate templates under one definitions key is an
	// authoring error, reported instead of silently picking one.
	const doc = resolverDoc + `
[jars.uri.definitions.ab]
x = "https://example.org/a.jar"
y = "https://example.org/b.jar"
`
	r := newTestResolver(t, doc)
	jar := jarsfile.NewJarFile("ab", jarsfile.Unset(), "", "")

	_, _, err := r.Single(jar)
	var amb *AmbiguousResultError
	if !errors.As(err, &amb) {
		t.Fatalf("expected *AmbiguousResultError, got %v", err)
	}
	if amb.What != "urls" {
		t.Errorf("What = %q, want urls", amb.What)
	}
	if len(amb.Values) != 2 {
		t.Errorf("Values = %v", amb.Values)
	}
}

func TestSingleAmbiguousNames(t *testing.T) {
	// One template but two distinct display names is just as ambiguous.
	const doc = `
[jars.uri.definitions]
chunky = "https://example.org/download/{name}"

[jars.uri.special.names.chunky]
a = "chunky-a.jar"
b = "chunky-b.jar"
`
	r := newTestResolver(t, doc)
	jar := jarsfile.NewJarFile("chunky", jarsfile.Unset(), "", "")

	_, _, err := r.Single(jar)
	var amb *AmbiguousResultError
	if !errors.As(err, &amb) {
		t.Fatalf("expected *AmbiguousResultError, got %v", err)
	}
	if amb.What != "names" {
		t.Errorf("What = %q, want names", amb.What)
	}
	if len(amb.Values) != 2 {
		t.Errorf("Values = %v", amb.Values)
	}
}
