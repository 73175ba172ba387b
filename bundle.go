package aesophia

import (
	"archive/zip"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

var bundleZipMagic = [4]byte{'P', 'K', 0x03, 0x04}

const bundleManifestPath = "manifest.json"

var bundleDeterministicModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Bundle is a decoded .acb archive payload.
type Bundle struct {
	ManifestJSON []byte
	Files        map[string][]byte // excludes manifest.json
}

// BundleOptions configures one-shot .aes -> .acb packaging.
type BundleOptions struct {
	PackageName    string
	PackageVersion string
	ACIPath        string
	IncludeSource  bool
	SourcePath     string
}

// IsBundle reports whether input starts with local-file ZIP magic.
func IsBundle(data []byte) bool {
	if len(data) < len(bundleZipMagic) {
		return false
	}
	for i := range bundleZipMagic {
		if data[i] != bundleZipMagic[i] {
			return false
		}
	}
	return true
}

// BundleHash computes the keccak256 hash of a .acb archive.
func BundleHash(data []byte) string {
	return keccak256Hex(data)
}

// CompileContractToBundle compiles source into a minimal deterministic .acb
// package containing the contract's ACI and, optionally, its source.
func CompileContractToBundle(source []byte, name string, opts *BundleOptions) ([]byte, error) {
	typed, err := CheckContractModule(source, name)
	if err != nil {
		return nil, err
	}
	contract := &typed.AST.Contracts[0]
	contractName := strings.TrimSpace(contract.Name)
	if contractName == "" {
		return nil, fmt.Errorf("bundle requires a non-empty contract name")
	}
	aci, err := buildContractInterface(contract)
	if err != nil {
		return nil, err
	}

	pkgName := strings.ToLower(contractName)
	pkgVersion := "0.1.0"
	aciPath := fmt.Sprintf("interfaces/%s.json", contractName)
	includeSource := false
	sourcePath := ""

	if opts != nil {
		if strings.TrimSpace(opts.PackageName) != "" {
			pkgName = strings.TrimSpace(opts.PackageName)
		}
		if strings.TrimSpace(opts.PackageVersion) != "" {
			pkgVersion = strings.TrimSpace(opts.PackageVersion)
		}
		if strings.TrimSpace(opts.ACIPath) != "" {
			aciPath = strings.TrimSpace(opts.ACIPath)
		}
		includeSource = opts.IncludeSource
		sourcePath = strings.TrimSpace(opts.SourcePath)
	}
	// SourcePath only matters when the source is actually bundled; otherwise
	// the manifest would reference a file that is never written.
	if !includeSource {
		sourcePath = ""
	}
	if includeSource && sourcePath == "" {
		base := filepath.Base(name)
		if base == "." || base == "/" || base == string(filepath.Separator) || base == "" {
			base = contractName + ".aes"
		}
		sourcePath = "sources/" + base
	}

	manifest := struct {
		Name      string `json:"name"`
		Version   string `json:"version"`
		Compiler  string `json:"compiler"`
		Contracts []struct {
			Name   string `json:"name"`
			ACI    string `json:"aci"`
			Source string `json:"source,omitempty"`
		} `json:"contracts"`
	}{
		Name:     pkgName,
		Version:  pkgVersion,
		Compiler: PackageName + "/" + PackageVersion,
		Contracts: []struct {
			Name   string `json:"name"`
			ACI    string `json:"aci"`
			Source string `json:"source,omitempty"`
		}{
			{Name: contractName, ACI: aciPath, Source: sourcePath},
		},
	}
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return nil, err
	}

	files := map[string][]byte{
		aciPath: aci,
	}
	if includeSource {
		files[sourcePath] = source
	}
	return EncodeBundle(manifestJSON, files)
}

// EncodeBundle serializes manifest + files into deterministic .acb bytes.
func EncodeBundle(manifestJSON []byte, files map[string][]byte) ([]byte, error) {
	cleanFiles := map[string][]byte{}
	for name, body := range files {
		clean, err := normalizeBundlePath(name)
		if err != nil {
			return nil, err
		}
		if clean == bundleManifestPath {
			return nil, fmt.Errorf("bundle files must not override %q", bundleManifestPath)
		}
		b := make([]byte, len(body))
		copy(b, body)
		cleanFiles[clean] = b
	}
	if err := validateBundleManifest(manifestJSON, cleanFiles); err != nil {
		return nil, err
	}

	var names []string
	for name := range cleanFiles {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := writeBundleZipEntry(zw, bundleManifestPath, manifestJSON); err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := writeBundleZipEntry(zw, name, cleanFiles[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBundle deserializes .acb bytes and validates manifest/files.
func DecodeBundle(data []byte) (*Bundle, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid bundle zip: %w", err)
	}

	seen := map[string]struct{}{}
	var manifest []byte
	files := map[string][]byte{}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name, err := normalizeBundlePath(f.Name)
		if err != nil {
			return nil, err
		}
		if _, exists := seen[name]; exists {
			return nil, fmt.Errorf("duplicate bundle entry: %s", name)
		}
		seen[name] = struct{}{}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, err
		}
		if name == bundleManifestPath {
			manifest = body
			continue
		}
		files[name] = body
	}

	if len(manifest) == 0 {
		return nil, fmt.Errorf("bundle manifest.json not found")
	}
	if err := validateBundleManifest(manifest, files); err != nil {
		return nil, err
	}
	for name, body := range files {
		if strings.HasSuffix(strings.ToLower(name), ".json") && name != bundleManifestPath {
			if err := ValidateInterfaceText(body); err != nil {
				return nil, fmt.Errorf("invalid aci entry %q: %w", name, err)
			}
		}
	}
	return &Bundle{
		ManifestJSON: manifest,
		Files:        files,
	}, nil
}

// ValidateInterfaceText checks that data is a decodable ACI document.
func ValidateInterfaceText(data []byte) error {
	_, err := DecodeContractInterface(data)
	return err
}

func validateBundleManifest(manifestJSON []byte, files map[string][]byte) error {
	if !json.Valid(manifestJSON) {
		return fmt.Errorf("bundle manifest is not valid json")
	}
	var m struct {
		Name      string `json:"name"`
		Version   string `json:"version"`
		Contracts []struct {
			Name   string `json:"name"`
			ACI    string `json:"aci"`
			Source string `json:"source"`
		} `json:"contracts"`
	}
	if err := json.Unmarshal(manifestJSON, &m); err != nil {
		return fmt.Errorf("bundle manifest decode error: %w", err)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("bundle manifest requires non-empty 'name'")
	}
	if strings.TrimSpace(m.Version) == "" {
		return fmt.Errorf("bundle manifest requires non-empty 'version'")
	}
	for _, c := range m.Contracts {
		if p := strings.TrimSpace(c.ACI); p != "" {
			np, err := normalizeBundlePath(p)
			if err != nil {
				return fmt.Errorf("bundle manifest contract %q has invalid aci path %q: %w", c.Name, p, err)
			}
			if _, ok := files[np]; !ok {
				return fmt.Errorf("bundle manifest contract %q references missing aci file %q", c.Name, np)
			}
		}
		if p := strings.TrimSpace(c.Source); p != "" {
			np, err := normalizeBundlePath(p)
			if err != nil {
				return fmt.Errorf("bundle manifest contract %q has invalid source path %q: %w", c.Name, p, err)
			}
			if _, ok := files[np]; !ok {
				return fmt.Errorf("bundle manifest contract %q references missing source file %q", c.Name, np)
			}
		}
	}
	return nil
}

func writeBundleZipEntry(zw *zip.Writer, name string, body []byte) error {
	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: bundleDeterministicModTime,
	}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err = w.Write(body)
	return err
}

func normalizeBundlePath(p string) (string, error) {
	name := strings.TrimSpace(p)
	if name == "" {
		return "", fmt.Errorf("bundle entry path is empty")
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return "", fmt.Errorf("bundle entry path must be relative: %q", p)
	}
	name = strings.ReplaceAll(name, "\\", "/")
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("bundle entry path escapes archive root: %q", p)
	}
	if strings.Contains(clean, "/../") {
		return "", fmt.Errorf("bundle entry path escapes archive root: %q", p)
	}
	return clean, nil
}

func keccak256Hex(data []byte) string {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(data)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
