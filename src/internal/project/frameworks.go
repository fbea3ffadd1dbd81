package project

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/gjson"

	"typegate/src/internal/common"
)

type frameworkProbe struct {
	name        string
	configFiles []string
	packageDeps []string
}

var frameworkProbes = []frameworkProbe{
	{name: "vite", configFiles: []string{"vite.config.ts", "vite.config.js", "vite.config.mjs"}, packageDeps: []string{"vite"}},
	{name: "next", configFiles: []string{"next.config.js", "next.config.mjs", "next.config.ts"}, packageDeps: []string{"next"}},
	{name: "react", packageDeps: []string{"react"}},
	{name: "vue", configFiles: []string{"vue.config.js"}, packageDeps: []string{"vue"}},
	{name: "svelte", configFiles: []string{"svelte.config.js"}, packageDeps: []string{"svelte"}},
	{name: "astro", configFiles: []string{"astro.config.mjs", "astro.config.ts"}, packageDeps: []string{"astro"}},
}

// DetectFrameworks performs best-effort framework detection for a project
// root. The result is advisory status output only; it never changes analysis
// scope, with the single exception of the vite client-types handling in the
// config loader.
func DetectFrameworks(root string) []string {
	deps := readPackageDeps(root)

	var detected []string
	for _, probe := range frameworkProbes {
		if probeMatches(root, probe, deps) {
			detected = append(detected, probe.name)
		}
	}

	sort.Strings(detected)
	return detected
}

func probeMatches(root string, probe frameworkProbe, deps map[string]bool) bool {
	for _, name := range probe.configFiles {
		if common.FileExists(filepath.Join(root, name)) {
			return true
		}
	}
	for _, dep := range probe.packageDeps {
		if deps[dep] {
			return true
		}
	}
	return false
}

// readPackageDeps collects dependency names from the root's package.json,
// both regular and dev. Missing or malformed manifests yield an empty set.
func readPackageDeps(root string) map[string]bool {
	deps := make(map[string]bool)

	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return deps
	}

	for _, section := range []string{"dependencies", "devDependencies"} {
		gjson.GetBytes(data, section).ForEach(func(key, _ gjson.Result) bool {
			deps[key.String()] = true
			return true
		})
	}
	return deps
}
