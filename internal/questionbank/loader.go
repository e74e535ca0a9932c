package questionbank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/ashureev/interview-coach/internal/domain"
)

// Level is one named question list, in file order.
type Level struct {
	Name      string
	Questions []domain.Question
}

// RoleBank holds every level defined for a role.
type RoleBank struct {
	Role   string
	Domain string
	Levels []Level
	Path   string
}

func (r *RoleBank) level(name string) (*Level, bool) {
	for i := range r.Levels {
		if r.Levels[i].Name == name {
			return &r.Levels[i], true
		}
	}
	return nil, false
}

type roleFile struct {
	Domain string    `yaml:"domain"`
	Levels yaml.Node `yaml:"levels"`
}

func isBankFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func roleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadDir parses every bank file in dir. All file errors are reported
// together; the returned map is nil when any file failed.
func LoadDir(dir string) (map[string]*RoleBank, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read questions dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isBankFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	roles := make(map[string]*RoleBank, len(names))
	var errs []error
	for _, name := range names {
		path := filepath.Join(dir, name)
		rb, err := LoadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := roles[rb.Role]; dup {
			errs = append(errs, fmt.Errorf("%s: role %q already defined in %s", path, rb.Role, filepath.Base(prev.Path)))
			continue
		}
		roles[rb.Role] = rb
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return roles, nil
}

// LoadFile parses and validates a single role file. The role name is the
// file name without its extension.
func LoadFile(path string) (*RoleBank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rb, err := parse(raw, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rb.Role = roleName(path)
	rb.Path = path
	return rb, nil
}

// parse decodes bank content by format. Level order follows the document.
func parse(raw []byte, ext string) (*RoleBank, error) {
	if strings.EqualFold(ext, ".json") {
		return parseJSON(raw)
	}
	return parseYAML(raw)
}

func parseJSON(raw []byte) (*RoleBank, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var file struct {
		Domain string          `json:"domain"`
		Levels json.RawMessage `json:"levels"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	rb := &RoleBank{Domain: file.Domain}
	dec := json.NewDecoder(bytes.NewReader(file.Levels))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("levels: %w", err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("levels: %w", err)
		}
		name, _ := tok.(string)
		var qs []domain.Question
		if err := dec.Decode(&qs); err != nil {
			return nil, fmt.Errorf("level %q: %w", name, err)
		}
		if err := rb.addLevel(name, qs); err != nil {
			return nil, err
		}
	}
	return rb, nil
}

func parseYAML(raw []byte) (*RoleBank, error) {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validateDocument(generic); err != nil {
		return nil, err
	}

	var file roleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if file.Levels.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("levels must be a mapping")
	}

	rb := &RoleBank{Domain: file.Domain}
	content := file.Levels.Content
	for i := 0; i+1 < len(content); i += 2 {
		name := content[i].Value
		var qs []domain.Question
		if err := content[i+1].Decode(&qs); err != nil {
			return nil, fmt.Errorf("level %q: %w", name, err)
		}
		if err := rb.addLevel(name, qs); err != nil {
			return nil, err
		}
	}
	return rb, nil
}

func (r *RoleBank) addLevel(name string, qs []domain.Question) error {
	if err := checkUniqueIDs(qs); err != nil {
		return fmt.Errorf("level %q: %w", name, err)
	}
	if _, dup := r.level(name); dup {
		return fmt.Errorf("level %q defined twice", name)
	}
	r.Levels = append(r.Levels, Level{Name: name, Questions: qs})
	return nil
}

func checkUniqueIDs(qs []domain.Question) error {
	seen := make(map[string]struct{}, len(qs))
	for _, q := range qs {
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}
