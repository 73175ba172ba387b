package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	aesophia "github.com/KCHENPENGFEI/aesophia"
)

func dispatchSubcommand(args []string) (bool, int) {
	if len(args) == 0 {
		return false, 0
	}
	switch args[0] {
	case "aci":
		return true, cmdACI(args[1:])
	case "decode":
		return true, cmdDecode(args[1:])
	case "bundle":
		return true, cmdBundle(args[1:])
	case "inspect":
		return true, cmdInspect(args[1:])
	case "verify":
		return true, cmdVerify(args[1:])
	case "repl":
		return true, doREPL()
	case "--version":
		fmt.Println(aesophia.PackageCopyRight)
		return true, 0
	case "--help", "-h", "help":
		printRootUsage()
		return true, 0
	default:
		return false, 0
	}
}

func printRootUsage() {
	fmt.Print(`Usage:
  aesophia <subcommand> [flags] <inputs...>

Subcommands:
  aci       encode a .aes contract into its ACI (JSON interface description)
  decode    reconstruct declaration stubs from an ACI document
  bundle    package a .aes contract with its ACI into a .acb archive
  inspect   inspect .json ACI, .acb bundle or stub text
  verify    verify artifact integrity
  repl      interactive declaration-to-ACI loop

Global:
  --version print version
  --help    print this help
`)
}

func cmdACI(args []string) int {
	fs := flag.NewFlagSet("aci", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var output string
	var dumpAST bool
	fs.StringVar(&output, "o", "", "output ACI path (default: stdout)")
	fs.StringVar(&output, "output", "", "output ACI path (default: stdout)")
	fs.BoolVar(&dumpAST, "ast", false, "dump the parsed contract module instead")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: aesophia aci [-o <output.json>] <input.aes>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "aci requires exactly one input .aes file")
		fs.Usage()
		return 1
	}

	input := fs.Arg(0)
	source, err := os.ReadFile(input)
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}

	if dumpAST {
		mod, err := aesophia.ParseContractModule(source, input)
		if err != nil {
			fmt.Println(err.Error())
			return 1
		}
		fmt.Print(mod.String())
		return 0
	}

	aci, err := aesophia.EncodeContractInterface(source, input)
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}
	if output == "" {
		fmt.Println(string(aci))
		return 0
	}
	if err := os.WriteFile(output, append(aci, '\n'), 0o644); err != nil {
		fmt.Println(err.Error())
		return 1
	}
	return 0
}

func cmdDecode(args []string) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var output string
	fs.StringVar(&output, "o", "", "output stub path (default: stdout)")
	fs.StringVar(&output, "output", "", "output stub path (default: stdout)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: aesophia decode [-o <output.aes>] <input.json>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "decode requires exactly one input ACI file")
		fs.Usage()
		return 1
	}

	body, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}
	stub, err := aesophia.DecodeContractInterface(body)
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}
	if output == "" {
		fmt.Print(string(stub))
		return 0
	}
	if err := os.WriteFile(output, stub, 0o644); err != nil {
		fmt.Println(err.Error())
		return 1
	}
	return 0
}

func cmdBundle(args []string) int {
	fs := flag.NewFlagSet("bundle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var output, packageName, packageVersion string
	var includeSource bool
	fs.StringVar(&output, "o", "", "output .acb path")
	fs.StringVar(&output, "output", "", "output .acb path")
	fs.StringVar(&packageName, "package-name", "", "package name override")
	fs.StringVar(&packageVersion, "package-version", "0.0.0", "package version override")
	fs.BoolVar(&includeSource, "include-source", false, "include source in the bundle")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: aesophia bundle [-o <output.acb>] [options] <input.aes>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "bundle requires exactly one input .aes file")
		fs.Usage()
		return 1
	}

	input := fs.Arg(0)
	source, err := os.ReadFile(input)
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}
	if strings.TrimSpace(packageName) == "" {
		packageName = inputStem(input)
	}
	if output == "" {
		output = defaultArtifactPath(input, "acb")
	}
	acb, err := aesophia.CompileContractToBundle(source, input, &aesophia.BundleOptions{
		PackageName:    strings.TrimSpace(packageName),
		PackageVersion: strings.TrimSpace(packageVersion),
		IncludeSource:  includeSource,
	})
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}
	if err := os.WriteFile(output, acb, 0o644); err != nil {
		fmt.Println(err.Error())
		return 1
	}
	return 0
}

func cmdInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var asJSON bool
	fs.BoolVar(&asJSON, "json", false, "output JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: aesophia inspect [--json] <artifact>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "inspect requires exactly one artifact path")
		fs.Usage()
		return 1
	}

	path := fs.Arg(0)
	body, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}
	switch detectArtifactKind(path, body) {
	case artifactACI:
		return inspectACI(body, asJSON)
	case artifactBundle:
		return inspectBundle(body, asJSON)
	case artifactStub:
		return inspectStub(body, asJSON)
	default:
		fmt.Println("unknown artifact type (expected ACI json, .acb bundle, or stub text)")
		return 1
	}
}

func cmdVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: aesophia verify <artifact>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "verify requires exactly one artifact path")
		fs.Usage()
		return 1
	}

	path := fs.Arg(0)
	body, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}

	switch detectArtifactKind(path, body) {
	case artifactACI:
		if err := aesophia.ValidateInterfaceText(body); err != nil {
			fmt.Println(err.Error())
			return 1
		}
		fmt.Println("ACI: ok")
		return 0
	case artifactBundle:
		if _, err := aesophia.DecodeBundle(body); err != nil {
			fmt.Println(err.Error())
			return 1
		}
		fmt.Println("Bundle: ok")
		return 0
	case artifactStub:
		if err := aesophia.ValidateStubText(body); err != nil {
			fmt.Println(err.Error())
			return 1
		}
		fmt.Println("Stub: ok")
		return 0
	default:
		fmt.Println("unknown artifact type (expected ACI json, .acb bundle, or stub text)")
		return 1
	}
}

func defaultArtifactPath(input, ext string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + ext
}

func inputStem(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type artifactKind int

const (
	artifactUnknown artifactKind = iota
	artifactACI
	artifactBundle
	artifactStub
)

func detectArtifactKind(path string, body []byte) artifactKind {
	switch strings.ToLower(strings.TrimSpace(filepath.Ext(path))) {
	case ".json":
		return artifactACI
	case ".acb":
		return artifactBundle
	}
	if aesophia.IsBundle(body) {
		return artifactBundle
	}
	if err := aesophia.ValidateInterfaceText(body); err == nil {
		return artifactACI
	}
	if err := aesophia.ValidateStubText(body); err == nil {
		return artifactStub
	}
	return artifactUnknown
}

func inspectACI(body []byte, asJSON bool) int {
	stub, err := aesophia.DecodeContractInterface(body)
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}
	info, err := aesophia.InspectStubText(stub)
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}
	if asJSON {
		out := struct {
			ContractName  string `json:"contract_name"`
			FunctionCount int    `json:"function_count"`
		}{
			ContractName:  info.ContractName,
			FunctionCount: info.FunctionCount,
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Println(err.Error())
			return 1
		}
		fmt.Println(string(b))
		return 0
	}
	fmt.Printf("Contract: %s\n", info.ContractName)
	fmt.Printf("Functions: %d\n", info.FunctionCount)
	return 0
}

func inspectStub(body []byte, asJSON bool) int {
	info, err := aesophia.InspectStubText(body)
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}
	if asJSON {
		out := struct {
			ContractName  string `json:"contract_name"`
			FunctionCount int    `json:"function_count"`
		}{
			ContractName:  info.ContractName,
			FunctionCount: info.FunctionCount,
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Println(err.Error())
			return 1
		}
		fmt.Println(string(b))
		return 0
	}
	fmt.Printf("Contract: %s\n", info.ContractName)
	fmt.Printf("Functions: %d\n", info.FunctionCount)
	return 0
}

func inspectBundle(body []byte, asJSON bool) int {
	bundle, err := aesophia.DecodeBundle(body)
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}
	names := make([]string, 0, len(bundle.Files))
	for name := range bundle.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	if asJSON {
		type bundleFileInfo struct {
			Path  string `json:"path"`
			Bytes int    `json:"bytes"`
		}
		infos := make([]bundleFileInfo, 0, len(names))
		for _, name := range names {
			infos = append(infos, bundleFileInfo{
				Path:  name,
				Bytes: len(bundle.Files[name]),
			})
		}
		out := struct {
			ManifestJSON json.RawMessage  `json:"manifest_json"`
			FileCount    int              `json:"file_count"`
			Files        []bundleFileInfo `json:"files"`
			PackageHash  string           `json:"package_hash"`
		}{
			ManifestJSON: json.RawMessage(bundle.ManifestJSON),
			FileCount:    len(bundle.Files),
			Files:        infos,
			PackageHash:  aesophia.BundleHash(body),
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Println(err.Error())
			return 1
		}
		fmt.Println(string(b))
		return 0
	}

	fmt.Printf("Manifest JSON: %s\n", string(bundle.ManifestJSON))
	fmt.Printf("Files: %d\n", len(bundle.Files))
	for _, name := range names {
		fmt.Printf(" - %s (%d bytes)\n", name, len(bundle.Files[name]))
	}
	fmt.Printf("Package hash: %s\n", aesophia.BundleHash(body))
	return 0
}
