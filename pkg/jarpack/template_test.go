// SPDX-License-Identifier: MPL-2.0

package jarpack

import (
	"errors"
	"strings"
	"testing"

	"miner-cli/pkg/jarsfile"
)

const templateDoc = `
[jars.uri.definitions]
paper = "https://{host}/v2/projects/paper/versions/{version}/builds/{build}/downloads/{name}"
worldedit = "https://{host:bukkit}/download/{name}"

[jars.uri.special.hosts]
paper = "api.papermc.io"
bukkit = "dev.bukkit.org"

[jars.uri.special.names]
paper = "paper-{version}-{build}.jar"
worldedit = "worldedit-bukkit.jar"
`

func templateResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	tree, err := jarsfile.Parse([]byte(templateDoc))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return NewResolver(tree, opts...)
}

func TestExpandTemplateAllVariables(t *testing.T) {
	r := templateResolver(t)
	jar := jarsfile.NewJarFile("paper", jarsfile.MustParseVersion("1.20.1"), "196", jarsfile.ServicePaper)

	got, err := r.expandTemplate(
		"https://{host}/v2/projects/paper/versions/{version}/builds/{build}/downloads/{name}", jar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://api.papermc.io/v2/projects/paper/versions/1.20.1/builds/196/downloads/paper-1.20.1-196.jar"
	if got != want {
		t.Errorf("expanded to %q, want %q", got, want)
	}
	if strings.Contains(got, "{") {
		t.Errorf("expansion left placeholders: %q", got)
	}
}

func TestExpandTemplateQualifiedHost(t *testing.T) {
	r := templateResolver(t)
	jar := jarsfile.NewJarFile("worldedit", jarsfile.Unset(), "", "")

	got, err := r.expandTemplate("https://{host:bukkit}/download/{name}", jar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://dev.bukkit.org/download/worldedit-bukkit.jar" {
		t.Errorf("expanded to %q", got)
	}
}

func TestExpandTemplateMissingBuild(t *testing.T) {
	r := templateResolver(t)
	jar := jarsfile.NewJarFile("paper", jarsfile.MustParseVersion("1.20.1"), "", jarsfile.ServicePaper)

	_, err := r.expandTemplate("{host}/{build}", jar)
	if err == nil {
		t.Fatal("expected error for empty build")
	}
	var tve *TemplateVariableError
	if !errors.As(err, &tve) {
		t.Fatalf("expected *TemplateVariableError, got %T", err)
	}
	if tve.Variable != "build" {
		t.Errorf("Variable = %q, want build", tve.Variable)
	}
	if tve.Jar != "paper" {
		t.Errorf("Jar = %q, want paper", tve.Jar)
	}
}

func TestExpandTemplateMissingHost(t *testing.T) {
	r := templateResolver(t)
	jar := jarsfile.NewJarFile("unknownjar", jarsfile.Unset(), "", "")

	_, err := r.expandTemplate("https://{host}/x", jar)
	if !errors.Is(err, ErrTemplateVariable) {
		t.Errorf("expected ErrTemplateVariable, got %v", err)
	}
}

func TestExpandTemplateMissingQualifier(t *testing.T) {
	r := templateResolver(t)
	jar := jarsfile.NewJarFile("worldedit", jarsfile.Unset(), "", "")

	_, err := r.expandTemplate("https://{host:nosuchhost}/x", jar)
	var tve *TemplateVariableError
	if !errors.As(err, &tve) {
		t.Fatalf("expected *TemplateVariableError, got %v", err)
	}
	if tve.Variable != "nosuchhost" {
		t.Errorf("Variable = %q, want nosuchhost", tve.Variable)
	}
}

func TestExpandTemplateVersionFallsBackToGameVersion(t *testing.T) {
	r := templateResolver(t, WithGameVersion(jarsfile.MustParseVersion("1.20.1")))
	jar := jarsfile.NewJarFile("paper", jarsfile.Unset(), "196", jarsfile.ServicePaper)

	got, err := r.expandTemplate("v/{version}", jar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "v/1.20.1" {
		t.Errorf("expanded to %q, want v/1.20.1", got)
	}
}

func TestExpandTemplateVersionUnsetEverywhere(t *testing.T) {
	r := templateResolver(t)
	jar := jarsfile.NewJarFile("paper", jarsfile.Unset(), "196", jarsfile.ServicePaper)

	_, err := r.expandTemplate("v/{version}", jar)
	var tve *TemplateVariableError
	if !errors.As(err, &tve) {
		t.Fatalf("expected *TemplateVariableError, got %v", err)
	}
	if tve.Variable != "version" {
		t.Errorf("Variable = %q, want version", tve.Variable)
	}
}

func TestExpandTemplateUnknownPlaceholder(t *testing.T) {
	r := templateResolver(t)
	jar := jarsfile.NewJarFile("paper", jarsfile.MustParseVersion("1.20.1"), "196", jarsfile.ServicePaper)

	_, err := r.expandTemplate("https://example.org/{channel}/x", jar)
	var tve *TemplateVariableError
	if !errors.As(err, &tve) {
		t.Fatalf("expected *TemplateVariableError, got %v", err)
	}
	if tve.Variable != "channel" {
		t.Errorf("Variable = %q, want channel", tve.Variable)
	}
}

func TestExpandTemplateNestedPlaceholdersInName(t *testing.T) {
	// The display name for paper itself embeds {version} and {build};
	// substituting {name} must trigger another pass rather than leaving
	// markers behind.
	r := templateResolver(t)
	jar := jarsfile.NewJarFile("paper", jarsfile.MustParseVersion("1.20.1"), "196", jarsfile.ServicePaper)

	got, err := r.expandTemplate("dl/{name}", jar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "dl/paper-1.20.1-196.jar" {
		t.Errorf("expanded to %q", got)
	}
}

func TestHostQualifier(t *testing.T) {
	q, ok := hostQualifier("https://{host:bukkit}/x")
	if !ok || q != "bukkit" {
		t.Errorf("hostQualifier = %q, %v", q, ok)
	}
	if _, ok := hostQualifier("https://{host}/x"); ok {
		t.Error("bare host must not report a qualifier")
	}
}

func TestRewriteQualifiedHost(t *testing.T) {
	got := rewriteQualifiedHost("a/{host:bukkit}/b/{host:bukkit}/c")
	if got != "a/{host}/b/{host:bukkit}/c" {
		t.Errorf("rewrite = %q", got)
	}
}
