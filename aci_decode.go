package aesophia

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MalformedInterfaceError reports a required key that is absent or of the
// wrong shape in a decoded interface description.
type MalformedInterfaceError struct {
	Key   string // offending key
	Entry string // containing entry
}

// jsonSyntaxKey marks documents that failed JSON decoding outright, before
// any key was consulted.
const jsonSyntaxKey = "(json)"

func (e *MalformedInterfaceError) Error() string {
	if e.Key == jsonSyntaxKey {
		return fmt.Sprintf("malformed interface: %s is not valid json", e.Entry)
	}
	return fmt.Sprintf("malformed interface: missing or invalid key %q in %s", e.Key, e.Entry)
}

// DecodeContractInterface reconstructs minimal declaration stubs from an ACI
// document: a contract header followed by one function signature line per
// entry. Argument names are dropped (the stub is a type signature) and type
// definitions are not emitted. The input is treated as a generic keyed
// structure; key order is irrelevant. No parser or checker runs here, it is
// a syntax-level reconstruction rather than a verification step.
func DecodeContractInterface(aciJSON []byte) ([]byte, error) {
	var root map[string]any
	if err := json.Unmarshal(aciJSON, &root); err != nil {
		return nil, &MalformedInterfaceError{Key: jsonSyntaxKey, Entry: "interface document"}
	}

	contract, err := requireMap(root, "contract", "interface document")
	if err != nil {
		return nil, err
	}
	name, err := requireString(contract, "name", "contract")
	if err != nil {
		return nil, err
	}
	functions, err := requireList(contract, "functions", "contract")
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("contract ")
	b.WriteString(name)
	b.WriteString(" =\n")

	for i, entry := range functions {
		fn, ok := entry.(map[string]any)
		if !ok {
			return nil, &MalformedInterfaceError{Key: "functions", Entry: fmt.Sprintf("functions[%d]", i)}
		}
		fnEntry := fmt.Sprintf("functions[%d]", i)
		fnName, err := requireString(fn, "name", fnEntry)
		if err != nil {
			return nil, err
		}
		args, err := requireList(fn, "arguments", fnEntry)
		if err != nil {
			return nil, err
		}
		retType, err := requireString(fn, "type", fnEntry)
		if err != nil {
			return nil, err
		}

		argTypes := make([]string, 0, len(args))
		for j, a := range args {
			arg, ok := a.(map[string]any)
			if !ok {
				return nil, &MalformedInterfaceError{Key: "arguments", Entry: fnEntry}
			}
			at, err := requireString(arg, "type", fmt.Sprintf("%s.arguments[%d]", fnEntry, j))
			if err != nil {
				return nil, err
			}
			argTypes = append(argTypes, at)
		}

		b.WriteString("  function ")
		b.WriteString(fnName)
		b.WriteString(" : (")
		b.WriteString(strings.Join(argTypes, ","))
		b.WriteString(") => ")
		b.WriteString(retType)
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

func requireMap(m map[string]any, key, entry string) (map[string]any, error) {
	v, ok := m[key]
	if !ok {
		return nil, &MalformedInterfaceError{Key: key, Entry: entry}
	}
	out, ok := v.(map[string]any)
	if !ok {
		return nil, &MalformedInterfaceError{Key: key, Entry: entry}
	}
	return out, nil
}

func requireString(m map[string]any, key, entry string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", &MalformedInterfaceError{Key: key, Entry: entry}
	}
	out, ok := v.(string)
	if !ok {
		return "", &MalformedInterfaceError{Key: key, Entry: entry}
	}
	return out, nil
}

func requireList(m map[string]any, key, entry string) ([]any, error) {
	v, ok := m[key]
	if !ok {
		return nil, &MalformedInterfaceError{Key: key, Entry: entry}
	}
	out, ok := v.([]any)
	if !ok {
		return nil, &MalformedInterfaceError{Key: key, Entry: entry}
	}
	return out, nil
}

// StubInfo is lightweight metadata extracted from declaration stub text.
type StubInfo struct {
	ContractName  string
	FunctionCount int
}

// ValidateStubText performs a lightweight structural validation of
// reconstructed declaration stub text.
func ValidateStubText(data []byte) error {
	_, err := parseStubInfo(data)
	return err
}

// InspectStubText validates declaration stub text and extracts its metadata.
func InspectStubText(data []byte) (*StubInfo, error) {
	return parseStubInfo(data)
}

func parseStubInfo(data []byte) (*StubInfo, error) {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return nil, fmt.Errorf("stub text is empty")
	}
	lines := strings.Split(s, "\n")

	first := ""
	start := 0
	for i, raw := range lines {
		line := normalizeStubLine(raw)
		if line == "" {
			continue
		}
		first = line
		start = i + 1
		break
	}
	if first == "" {
		return nil, fmt.Errorf("stub text is empty")
	}
	if !strings.HasPrefix(first, "contract ") || !strings.HasSuffix(first, "=") {
		return nil, fmt.Errorf("stub text must start with 'contract <name> =' header")
	}
	name := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(first, "contract "), "="))
	if name == "" {
		return nil, fmt.Errorf("stub header missing contract name")
	}

	info := &StubInfo{ContractName: name}
	for i := start; i < len(lines); i++ {
		line := normalizeStubLine(lines[i])
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "function ") {
			return nil, fmt.Errorf("stub contains unsupported line: %q", line)
		}
		if !strings.Contains(line, " : (") || !strings.Contains(line, ") => ") {
			return nil, fmt.Errorf("stub function line must have the shape 'function <name> : (<args>) => <type>'")
		}
		info.FunctionCount++
	}
	return info, nil
}

func normalizeStubLine(raw string) string {
	line := strings.TrimSpace(raw)
	if line == "" {
		return ""
	}
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	return line
}
